package lemmatizer

import (
	"archive/tar"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
)

// Fetcher downloads model packages published as <BaseURL>/<name>.tar.gz
// and unpacks them under Dir/<name>.
type Fetcher struct {
	BaseURL string
	Dir     string
	// Progress, when set, wraps the download stream. size is -1 when
	// the server does not announce a length.
	Progress func(size int64) io.Writer

	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher that makes a single attempt per download.
func NewFetcher(baseURL, dir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Dir:     dir,
		client:  newHTTPClient(timeout),
	}
}

// URL returns the archive location for the named model.
func (f *Fetcher) URL(name string) string {
	return f.BaseURL + "/" + name + ".tar.gz"
}

// Fetch downloads and installs the named model package, replacing any
// previous installation only once the new one is fully extracted.
func (f *Fetcher) Fetch(ctx context.Context, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Wrapf(ErrFetch, "invalid model name %q", name)
	}
	if f.BaseURL == "" {
		return errors.Wrap(ErrFetch, "no model download URL configured")
	}
	url := f.URL(name)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(ErrFetch, "build request for %s: %v", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(ErrFetch, "download %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrFetch, "download %s: status %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.Progress != nil {
		body = io.TeeReader(body, f.Progress(resp.ContentLength))
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return errors.Wrapf(ErrFetch, "create %s: %v", f.Dir, err)
	}
	tmp, err := os.MkdirTemp(f.Dir, "."+name+"-")
	if err != nil {
		return errors.Wrapf(ErrFetch, "create staging dir: %v", err)
	}
	defer os.RemoveAll(tmp)

	if err := extract(body, tmp); err != nil {
		return errors.Wrapf(ErrFetch, "unpack %s: %v", url, err)
	}
	src := packageRoot(tmp, name)
	dst := filepath.Join(f.Dir, name)
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(ErrFetch, "remove old %s: %v", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(ErrFetch, "install %s: %v", dst, err)
	}
	return nil
}

// extract unpacks a gzipped tar stream into dir. Only directories and
// regular files are created; entries escaping dir are rejected.
func extract(r io.Reader, dir string) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.Clean("/"+hdr.Name))
		if target == filepath.Clean(dir) {
			continue
		}
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return errors.Newf("illegal path %q in archive", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// packageRoot returns the directory holding meta.yaml: archives may
// either contain the files at the top level or inside a <name>/ folder.
func packageRoot(dir, name string) string {
	nested := filepath.Join(dir, name)
	if _, err := os.Stat(filepath.Join(nested, metaFile)); err == nil {
		return nested
	}
	return dir
}

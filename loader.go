package lemmatizer

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Files that make up a rule model package.
const (
	metaFile    = "meta.yaml"
	lexiconFile = "lexicon.tsv"
	rulesFile   = "rules.tsv"
	indexFile   = "index.tsv"
)

// OpenRuleModel loads the model package stored in dir.
func OpenRuleModel(dir string) (*RuleModel, error) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, errors.Wrapf(ErrModelNotFound, "no model package at %s", dir)
	}
	m := &RuleModel{
		lexicon: make(map[string][]Analysis),
		index:   make(map[string]map[string]struct{}),
	}
	if err := m.loadMeta(dir); err != nil {
		return nil, err
	}
	if err := m.loadLexicon(dir); err != nil {
		return nil, err
	}
	if err := m.loadRules(dir); err != nil {
		return nil, err
	}
	if err := m.loadIndex(dir); err != nil {
		return nil, err
	}
	if m.meta.Name == "" {
		m.meta.Name = filepath.Base(dir)
	}
	return m, nil
}

// InstalledModels lists the model packages found in dir, sorted by name.
// A missing dir holds no models.
func InstalledModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	pkgs := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			return false
		}
		_, err := os.Stat(filepath.Join(dir, e.Name(), metaFile))
		return err == nil
	})
	return lo.Map(pkgs, func(e os.DirEntry, _ int) string {
		return e.Name()
	}), nil
}

// loadMeta reads meta.yaml.
func (m *RuleModel) loadMeta(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrModelNotFound, "missing %s in %s", metaFile, dir)
		}
		return errors.Wrapf(err, "read %s", metaFile)
	}
	if err := yaml.Unmarshal(data, &m.meta); err != nil {
		return errors.Wrapf(ErrModelCorrupt, "parse %s: %v", metaFile, err)
	}
	return nil
}

// loadLexicon reads lexicon.tsv.
// Line format: form<TAB>lemma<TAB>pos<TAB>tag[<TAB>morph]
func (m *RuleModel) loadLexicon(dir string) error {
	return readTable(filepath.Join(dir, lexiconFile), 4, func(f []string) error {
		a := Analysis{Lemma: f[1], POS: f[2], Tag: f[3]}
		if len(f) > 4 && f[4] != "-" {
			a.Morph = f[4]
		}
		form := strings.ToLower(f[0])
		m.lexicon[form] = append(m.lexicon[form], a)
		return nil
	})
}

// loadRules reads rules.tsv and orders the rules by decreasing suffix
// length; rules sharing a suffix keep their file order.
// Line format: suffix<TAB>replacement<TAB>pos<TAB>tag<TAB>morph[<TAB>oov]
// An empty replacement is written as "-".
func (m *RuleModel) loadRules(dir string) error {
	err := readTable(filepath.Join(dir, rulesFile), 5, func(f []string) error {
		r := Rule{Suffix: f[0], Replacement: f[1], POS: f[2], Tag: f[3], Morph: f[4]}
		if r.Replacement == "-" {
			r.Replacement = ""
		}
		if r.Morph == "-" {
			r.Morph = ""
		}
		if r.Suffix == "" {
			return errors.New("empty suffix")
		}
		r.OOV = len(f) > 5 && f[5] == "oov"
		m.rules = append(m.rules, r)
		return nil
	})
	if err != nil {
		return err
	}
	sort.SliceStable(m.rules, func(i, j int) bool {
		return len(m.rules[i].Suffix) > len(m.rules[j].Suffix)
	})
	return nil
}

// loadIndex reads index.tsv.
// Line format: word<TAB>pos[,pos...]
func (m *RuleModel) loadIndex(dir string) error {
	return readTable(filepath.Join(dir, indexFile), 2, func(f []string) error {
		word := strings.ToLower(f[0])
		set, ok := m.index[word]
		if !ok {
			set = make(map[string]struct{})
			m.index[word] = set
		}
		for _, pos := range strings.Split(f[1], ",") {
			set[strings.TrimSpace(pos)] = struct{}{}
		}
		return nil
	})
}

// readTable scans a tab-separated file, skipping blank lines and lines
// starting with '#', and calls fn for every row with at least minFields fields.
func readTable(path string, minFields int, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrModelNotFound, "missing %s", filepath.Base(path))
		}
		return errors.Wrapf(err, "open %s", filepath.Base(path))
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < minFields {
			return errors.Wrapf(ErrModelCorrupt, "%s:%d: want %d fields, got %d",
				filepath.Base(path), line, minFields, len(fields))
		}
		if err := fn(fields); err != nil {
			return errors.Wrapf(ErrModelCorrupt, "%s:%d: %v", filepath.Base(path), line, err)
		}
	}
	return sc.Err()
}

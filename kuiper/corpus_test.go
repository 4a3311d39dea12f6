package kuiper_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/kuiper-lang/kuiper/kuiper"
)

// corpus_test.go runs every testdata/*.kp file end to end: compile, run
// against its declared inputs, and check the result (or error kind)
// against its header comment. This is the regression corpus described in
// spec §8, exercising the built-in catalog the way unit tests covering one
// builtin at a time cannot.

var directiveRE = regexp.MustCompile(`^//\s*([a-z]+):\s*(.*)$`)

type corpusCase struct {
	inputNames []string
	inputs     []kuiper.Value
	expectJSON string
	errorKind  string
	source     string
}

func parseCorpusFile(t *testing.T, path string) corpusCase {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	lines := strings.Split(string(raw), "\n")
	var c corpusCase
	i := 0
	for ; i < len(lines); i++ {
		m := directiveRE.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		switch m[1] {
		case "inputs":
			for _, decl := range strings.Split(m[2], ";") {
				decl = strings.TrimSpace(decl)
				if decl == "" {
					continue
				}
				parts := strings.SplitN(decl, "=", 2)
				if len(parts) != 2 {
					t.Fatalf("%s: malformed inputs declaration %q", path, decl)
				}
				name := strings.TrimSpace(parts[0])
				v, err := kuiper.ValueFromJSON([]byte(strings.TrimSpace(parts[1])))
				if err != nil {
					t.Fatalf("%s: input %q: %v", path, name, err)
				}
				c.inputNames = append(c.inputNames, name)
				c.inputs = append(c.inputs, v)
			}
		case "expect":
			c.expectJSON = strings.TrimSpace(m[2])
		case "error":
			c.errorKind = strings.TrimSpace(m[2])
		default:
			t.Fatalf("%s: unknown directive %q", path, m[1])
		}
	}
	c.source = strings.Join(lines[i:], "\n")
	return c
}

func jsonEqual(t *testing.T, want, got string) bool {
	t.Helper()
	var w, g interface{}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("parsing expected JSON %q: %v", want, err)
	}
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("parsing actual JSON %q: %v", got, err)
	}
	return reflect.DeepEqual(w, g)
}

func TestCorpus(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.kp"))
	if err != nil {
		t.Fatalf("globbing testdata: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no testdata/*.kp files found")
	}
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			c := parseCorpusFile(t, path)
			ce, err := kuiper.Compile(c.source, c.inputNames, kuiper.DefaultOptions())
			if c.errorKind != "" {
				if err == nil {
					_, runErr := ce.Run(c.inputs)
					err = runErr
				}
				if err == nil {
					t.Fatalf("%s: expected a %s error, got none", path, c.errorKind)
				}
				kind := errKind(err)
				expect.EQ(t, c.errorKind, kind)
				return
			}
			if err != nil {
				t.Fatalf("%s: compile: %v", path, err)
			}
			got, err := ce.RunJSON(c.inputs)
			if err != nil {
				t.Fatalf("%s: run: %v", path, err)
			}
			if !jsonEqual(t, c.expectJSON, got) {
				t.Errorf("%s: got %s, want %s", path, got, c.expectJSON)
			}
		})
	}
}

func errKind(err error) string {
	switch e := err.(type) {
	case *kuiper.CompileError:
		return e.Kind.String()
	case *kuiper.RuntimeError:
		return e.Kind.String()
	}
	return ""
}

package jsonfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joe/tidy-files/pkg/jsonfile"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

type doc struct {
	Name  string
	Items []string
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var target doc

	found, err := jsonfile.Load(filepath.Join(t.TempDir(), "absent.json"), &target)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(found).To(BeFalse())
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	g.Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

	var target doc

	found, err := jsonfile.Load(path, &target)
	g.Expect(found).To(BeTrue())
	g.Expect(errors.Is(err, jsonfile.ErrMalformed)).To(BeTrue())
}

func TestSave_CreatesParentsAndRoundTrips(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "nested", "deeper", "doc.json")
	want := doc{Name: "n", Items: []string{"a", "b"}}

	g.Expect(jsonfile.Save(path, want)).To(Succeed())

	raw, err := os.ReadFile(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(raw)).To(ContainSubstring("\n  \"Name\": \"n\""))

	var got doc

	found, err := jsonfile.Load(path, &got)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(found).To(BeTrue())
	g.Expect(got).To(Equal(want))
}

func TestSave_OverwritesWholeFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "doc.json")
	g.Expect(jsonfile.Save(path, doc{Name: "a long name", Items: []string{"x", "y", "z"}})).To(Succeed())
	g.Expect(jsonfile.Save(path, doc{Name: "b"})).To(Succeed())

	var got doc

	_, err := jsonfile.Load(path, &got)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal(doc{Name: "b"}))
}

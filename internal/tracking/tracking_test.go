package tracking_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/tracking"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

func newStore(t *testing.T, path string) *tracking.Store {
	t.Helper()

	return tracking.NewStore(path, zerolog.New(zerolog.NewTestWriter(t)))
}

func TestStore_IsTrackedIgnoresCase(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := newStore(t, filepath.Join(t.TempDir(), "copiedfiles.json"))
	store.Add(`C:\a.txt`, `D:\out\Docs\a.txt`, "Docs")

	g.Expect(store.IsTracked(`c:\A.TXT`)).To(BeTrue())
	g.Expect(store.IsTracked(`c:\b.txt`)).To(BeFalse())
}

func TestStore_AddKeepsFirstRecord(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := newStore(t, filepath.Join(t.TempDir(), "copiedfiles.json"))
	store.Add("/src/a.txt", "/out/Docs/a.txt", "Docs")
	store.Add("/SRC/A.TXT", "/out/Other/a.txt", "Other")

	g.Expect(store.Len()).To(Equal(1))
	g.Expect(store.Records()[0].Category).To(Equal("Docs"))
}

func TestStore_AddStampsUTC(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	local := time.FixedZone("UTC+2", 2*60*60)
	store := newStore(t, filepath.Join(t.TempDir(), "copiedfiles.json"))
	store.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, local) }

	store.Add("/src/a.txt", "/out/a.txt", "Docs")

	copiedAt := store.Records()[0].CopiedAt
	g.Expect(copiedAt.Location()).To(Equal(time.UTC))
	g.Expect(copiedAt.Hour()).To(Equal(8))
}

func TestStore_RemoveAndClear(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := newStore(t, filepath.Join(t.TempDir(), "copiedfiles.json"))
	store.Add("/src/a.txt", "/out/a.txt", "Docs")
	store.Add("/src/b.txt", "/out/b.txt", "Docs")
	store.Add("/src/c.txt", "/out/c.txt", "Docs")

	g.Expect(store.Remove("/SRC/B.txt")).To(BeTrue())
	g.Expect(store.Remove("/src/b.txt")).To(BeFalse())
	g.Expect(store.IsTracked("/src/c.txt")).To(BeTrue())
	g.Expect(store.Len()).To(Equal(2))

	store.Clear()
	g.Expect(store.Len()).To(BeZero())
	g.Expect(store.IsTracked("/src/a.txt")).To(BeFalse())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "nested", "copiedfiles.json")
	store := newStore(t, path)
	store.Add("/src/a.txt", "/out/Docs/a.txt", "Docs")
	store.Add("/src/b.jpg", "/out/Photos/b_1.jpg", "Photos")
	g.Expect(store.Save()).To(Succeed())

	reloaded := newStore(t, path)
	reloaded.Load()

	g.Expect(reloaded.Len()).To(Equal(2))

	want := store.Records()
	got := reloaded.Records()

	for i := range want {
		g.Expect(got[i].SourceFilePath).To(Equal(want[i].SourceFilePath))
		g.Expect(got[i].DestinationFilePath).To(Equal(want[i].DestinationFilePath))
		g.Expect(got[i].Category).To(Equal(want[i].Category))
		g.Expect(got[i].CopiedAt.Equal(want[i].CopiedAt)).To(BeTrue())
		g.Expect(got[i].FileHash).To(BeNil())
	}
}

func TestStore_FileFormat(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "copiedfiles.json")
	store := newStore(t, path)
	store.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	store.Add("/src/a.txt", "/out/Docs/a.txt", "Docs")
	g.Expect(store.Save()).To(Succeed())

	raw, err := os.ReadFile(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(raw)).To(MatchJSON(`[{
		"SourceFilePath": "/src/a.txt",
		"DestinationFilePath": "/out/Docs/a.txt",
		"Category": "Docs",
		"CopiedAt": "2024-01-02T03:04:05Z",
		"FileHash": null
	}]`))
}

func TestStore_LoadMissingFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := newStore(t, filepath.Join(t.TempDir(), "absent.json"))
	store.Load()

	g.Expect(store.Len()).To(BeZero())
}

func TestStore_LoadMalformedFileStartsEmpty(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "copiedfiles.json")
	g.Expect(os.WriteFile(path, []byte(`[{"SourceFilePath": `), 0o600)).To(Succeed())

	var logs bytes.Buffer

	store := tracking.NewStore(path, zerolog.New(&logs))
	store.Add("/src/stale.txt", "/out/stale.txt", "Docs")
	store.Load()

	g.Expect(store.Len()).To(BeZero())
	g.Expect(logs.String()).To(ContainSubstring(`"level":"error"`))
}

func TestStore_LoadDropsDuplicateSources(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "copiedfiles.json")
	g.Expect(os.WriteFile(path, []byte(`[
		{"SourceFilePath": "/src/a.txt", "Category": "First"},
		{"SourceFilePath": "/SRC/A.TXT", "Category": "Second"}
	]`), 0o600)).To(Succeed())

	store := newStore(t, path)
	store.Load()

	g.Expect(store.Len()).To(Equal(1))
	g.Expect(store.Records()[0].Category).To(Equal("First"))
}

func TestStore_SaveSurfacesWriteErrors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	g.Expect(os.WriteFile(blocker, []byte("x"), 0o600)).To(Succeed())

	store := newStore(t, filepath.Join(blocker, "copiedfiles.json"))
	store.Add("/src/a.txt", "/out/a.txt", "Docs")

	g.Expect(store.Save()).ShouldNot(Succeed())
}

package copier_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/copier"
	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/internal/tracking"
	pkgerrors "github.com/joe/tidy-files/pkg/errors"
	"github.com/joe/tidy-files/pkg/filesystem"
)

type added struct {
	source, destination, category string
}

type fakeRecorder struct {
	added   []added
	saves   int
	saveErr error
}

func (f *fakeRecorder) Add(source, destination, category string) {
	f.added = append(f.added, added{source, destination, category})
}

func (f *fakeRecorder) Save() error {
	f.saves++
	return f.saveErr
}

var _ = Describe("Copy", func() {
	var (
		mfs      *filesystem.MockFileSystem
		recorder *fakeRecorder
		engine   *copier.Engine
		created  time.Time
		modified time.Time
	)

	BeforeEach(func() {
		mfs = filesystem.NewMockFileSystem()
		recorder = &fakeRecorder{}
		engine = copier.NewEngine(mfs, recorder, zerolog.New(GinkgoWriter))
		created = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		modified = created.Add(36 * time.Hour)
	})

	record := func(path, category string) *model.FileRecord {
		data, _, _, err := mfs.GetFile(path)
		Expect(err).ShouldNot(HaveOccurred())

		return &model.FileRecord{
			Path:       path,
			Name:       filepath.Base(path),
			Size:       int64(len(data)),
			CreatedAt:  created,
			ModifiedAt: modified,
			Category:   category,
			Classified: category != "",
		}
	}

	Describe("with nothing classified", func() {
		It("fails without touching the output tree", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)
			unclassified := record("/src/a.txt", "")
			labelledOnly := record("/src/a.txt", "Docs")
			labelledOnly.Classified = false

			result := engine.Copy([]*model.FileRecord{unclassified, labelledOnly, nil}, "/out", nil)

			Expect(result.Success).To(BeFalse())
			Expect(result.Message).To(Equal("No classified files to copy."))
			Expect(result.FilesCopied).To(BeZero())
			Expect(mfs.Exists("/out")).To(BeFalse())
			Expect(recorder.added).To(BeEmpty())
		})
	})

	Describe("a single classified file", func() {
		It("lands in output/<category>/<name> with the source timestamps", func() {
			mfs.AddFileWithTimes("/src/report.pdf", []byte("pdf!"), created, modified)

			result := engine.Copy([]*model.FileRecord{record("/src/report.pdf", "Docs")}, "/out", nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.FilesCopied).To(Equal(1))
			Expect(result.FilesSkipped).To(BeZero())
			Expect(result.TotalBytesCopied).To(Equal(int64(4)))
			Expect(result.Errors).To(BeEmpty())
			Expect(result.Copied).To(Equal([]string{"/src/report.pdf"}))
			Expect(result.Message).To(Equal("Successfully copied 1 files. Skipped 0 files due to conflicts."))

			data, birth, mod, err := mfs.GetFile("/out/Docs/report.pdf")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(data)).To(Equal("pdf!"))
			Expect(birth).To(Equal(created))
			Expect(mod).To(Equal(modified))

			Expect(recorder.added).To(Equal([]added{{"/src/report.pdf", "/out/Docs/report.pdf", "Docs"}}))
		})
	})

	Describe("name collisions", func() {
		It("copies to the first free _n name and counts a skip", func() {
			mfs.AddFile("/src/report.pdf", []byte("new"), modified)
			mfs.AddFile("/out/Docs/report.pdf", []byte("original"), modified)
			mfs.AddFile("/out/Docs/report_1.pdf", []byte("first rename"), modified)

			result := engine.Copy([]*model.FileRecord{record("/src/report.pdf", "Docs")}, "/out", nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.FilesCopied).To(Equal(1))
			Expect(result.FilesSkipped).To(Equal(1))
			Expect(result.Message).To(Equal("Successfully copied 1 files. Skipped 1 files due to conflicts."))

			original, _, _, err := mfs.GetFile("/out/Docs/report.pdf")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(original)).To(Equal("original"))

			renamed, _, _, err := mfs.GetFile("/out/Docs/report_2.pdf")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(renamed)).To(Equal("new"))
		})

		It("renames files with the same name from different folders within one batch", func() {
			mfs.AddFile("/a/photo.jpg", []byte("a"), modified)
			mfs.AddFile("/b/photo.jpg", []byte("b"), modified)

			result := engine.Copy([]*model.FileRecord{
				record("/a/photo.jpg", "Photos"),
				record("/b/photo.jpg", "Photos"),
			}, "/out", nil)

			Expect(result.FilesCopied).To(Equal(2))
			Expect(result.FilesSkipped).To(Equal(1))
			Expect(mfs.Exists("/out/Photos/photo.jpg")).To(BeTrue())
			Expect(mfs.Exists("/out/Photos/photo_1.jpg")).To(BeTrue())
		})
	})

	Describe("per-file failures", func() {
		It("records the error and keeps going", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)
			mfs.AddFile("/src/b.txt", []byte("b"), modified)
			mfs.AddFile("/src/c.txt", []byte("c"), modified)
			mfs.FailOn(filesystem.OpOpen, "/src/b.txt", os.ErrPermission)

			var reports []copier.Progress

			result := engine.Copy([]*model.FileRecord{
				record("/src/a.txt", "Docs"),
				record("/src/b.txt", "Docs"),
				record("/src/c.txt", "Docs"),
			}, "/out", func(current, total int, message string) {
				reports = append(reports, copier.Progress{Current: current, Total: total, Message: message})
			})

			Expect(result.Success).To(BeTrue())
			Expect(result.FilesCopied).To(Equal(2))
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(HavePrefix("Error copying b.txt: "))
			Expect(result.Copied).To(Equal([]string{"/src/a.txt", "/src/c.txt"}))
			Expect(result.Failures).To(HaveLen(1))
			Expect(result.Failures[0].Category()).To(Equal(pkgerrors.CategoryPermission))
			Expect(mfs.Exists("/out/Docs/b.txt")).To(BeFalse())

			Expect(reports).To(Equal([]copier.Progress{
				{Current: 1, Total: 3, Message: "Copied: a.txt"},
				{Current: 2, Total: 3, Message: "Copied: c.txt"},
			}))
			Expect(recorder.added).To(HaveLen(2))
		})

		It("still counts the skip when a renamed copy fails", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)
			mfs.AddFile("/out/Docs/a.txt", []byte("old"), modified)
			mfs.FailOn(filesystem.OpWrite, "/out/Docs/a_1.txt", errors.New("input/output error"))

			result := engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/out", nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.FilesCopied).To(BeZero())
			Expect(result.FilesSkipped).To(Equal(1))
			Expect(result.Errors).To(HaveLen(1))
			Expect(mfs.Exists("/out/Docs/a_1.txt")).To(BeFalse())
		})
	})

	Describe("output root", func() {
		It("is created when missing", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)

			result := engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/new/out", nil)

			Expect(result.Success).To(BeTrue())
			Expect(mfs.Exists("/new/out/Docs/a.txt")).To(BeTrue())
		})

		It("aborts the batch when it cannot be created", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)
			mfs.FailOn(filesystem.OpMkdir, "/locked/out", os.ErrPermission)

			result := engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/locked/out", nil)

			Expect(result.Success).To(BeFalse())
			Expect(result.Message).To(HavePrefix("Failed to create output folder: "))
			Expect(result.Errors).To(Equal([]string{result.Message}))
			Expect(result.FilesCopied).To(BeZero())
			Expect(recorder.added).To(BeEmpty())
		})
	})

	Describe("tracking", func() {
		It("saves after a batch when SaveTracking is set", func() {
			engine.SaveTracking = true
			mfs.AddFile("/src/a.txt", []byte("a"), modified)

			engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/out", nil)

			Expect(recorder.saves).To(Equal(1))
		})

		It("reports a failed save in the errors", func() {
			engine.SaveTracking = true
			recorder.saveErr = errors.New("write /data/copiedfiles.json: no space left on device")
			mfs.AddFile("/src/a.txt", []byte("a"), modified)

			result := engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/out", nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Errors).To(ConsistOf(ContainSubstring("no space left on device")))
			Expect(result.Failures[0].Category()).To(Equal(pkgerrors.CategoryDiskSpace))
		})

		It("does not save by default", func() {
			mfs.AddFile("/src/a.txt", []byte("a"), modified)

			engine.Copy([]*model.FileRecord{record("/src/a.txt", "Docs")}, "/out", nil)

			Expect(recorder.saves).To(BeZero())
		})
	})

	Describe("progress over a channel", func() {
		It("delivers one ordered report per copied file", func() {
			for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
				mfs.AddFile("/src/"+name, []byte(name), modified)
			}

			events := make(chan copier.Progress, 3)

			engine.Copy([]*model.FileRecord{
				record("/src/1.txt", "A"),
				record("/src/2.txt", "B"),
				record("/src/3.txt", "A"),
			}, "/out", copier.ChannelSink(events))
			close(events)

			var currents []int
			for event := range events {
				currents = append(currents, event.Current)
				Expect(event.Total).To(Equal(3))
			}

			Expect(currents).To(Equal([]int{1, 2, 3}))
		})
	})
})

var _ = Describe("Copy on the real filesystem", func() {
	It("copies, preserves the modification time and tracks the file", func() {
		root := GinkgoT().TempDir()
		src := filepath.Join(root, "src", "notes.txt")
		out := filepath.Join(root, "out")
		Expect(os.MkdirAll(filepath.Dir(src), 0o750)).To(Succeed())
		Expect(os.WriteFile(src, []byte("hello"), 0o600)).To(Succeed())

		mtime := time.Date(2018, 7, 8, 9, 10, 11, 0, time.UTC)
		Expect(os.Chtimes(src, mtime, mtime)).To(Succeed())

		store := tracking.NewStore(filepath.Join(root, "data", "copiedfiles.json"), zerolog.New(GinkgoWriter))
		engine := copier.NewEngine(filesystem.NewRealFileSystem(), store, zerolog.New(GinkgoWriter))
		engine.SaveTracking = true

		result := engine.Copy([]*model.FileRecord{{
			Path:       src,
			Name:       "notes.txt",
			Size:       5,
			CreatedAt:  mtime,
			ModifiedAt: mtime,
			Category:   "Notes",
			Classified: true,
		}}, out, nil)

		Expect(result.Success).To(BeTrue())
		Expect(result.Errors).To(BeEmpty())

		dst := filepath.Join(out, "Notes", "notes.txt")
		info, err := os.Stat(dst)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(info.ModTime().Equal(mtime)).To(BeTrue())

		Expect(store.IsTracked(src)).To(BeTrue())

		reloaded := tracking.NewStore(store.Path(), zerolog.New(GinkgoWriter))
		reloaded.Load()
		Expect(reloaded.Records()).To(HaveLen(1))
		Expect(reloaded.Records()[0].DestinationFilePath).To(Equal(dst))
	})

	It("treats a dangling link at the destination as taken", func() {
		root := GinkgoT().TempDir()
		src := filepath.Join(root, "src", "a.txt")
		docs := filepath.Join(root, "out", "Docs")
		victim := filepath.Join(root, "victim.txt")
		Expect(os.MkdirAll(filepath.Dir(src), 0o750)).To(Succeed())
		Expect(os.MkdirAll(docs, 0o750)).To(Succeed())
		Expect(os.WriteFile(src, []byte("NEW"), 0o600)).To(Succeed())
		Expect(os.Symlink(victim, filepath.Join(docs, "a.txt"))).To(Succeed())

		engine := copier.NewEngine(filesystem.NewRealFileSystem(), nil, zerolog.New(GinkgoWriter))

		result := engine.Copy([]*model.FileRecord{{
			Path:       src,
			Name:       "a.txt",
			Size:       3,
			ModifiedAt: time.Now(),
			Category:   "Docs",
			Classified: true,
		}}, filepath.Join(root, "out"), nil)

		Expect(result.FilesCopied).To(Equal(1))
		Expect(result.FilesSkipped).To(Equal(1))
		Expect(victim).NotTo(BeAnExistingFile())

		data, err := os.ReadFile(filepath.Join(docs, "a_1.txt"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(data)).To(Equal("NEW"))
	})
})

func TestCopier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Copier Suite")
}

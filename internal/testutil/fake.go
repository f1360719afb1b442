package testutil

import (
	"fmt"
	"os"

	"pdftriage/internal/model"
)

// FakeImage is one entry of a FakePage image directory. A non-nil Err makes
// resolution fail.
type FakeImage struct {
	Ref  model.ImageRef
	Data []byte
	Err  error
}

// FakePage is an in-memory model.Page.
type FakePage struct {
	Nr          int
	Paths       []model.Path
	DrawingsErr error
	Panic       string // Drawings panics with this message when set
	ImageList   []FakeImage
	ImagesErr   error

	Resolved []model.ImageRef // resolution attempts, in order
}

func (p *FakePage) Number() int { return p.Nr }

func (p *FakePage) Drawings() ([]model.Path, error) {
	if p.Panic != "" {
		panic(p.Panic)
	}
	return p.Paths, p.DrawingsErr
}

func (p *FakePage) Images() ([]model.ImageRef, error) {
	if p.ImagesErr != nil {
		return nil, p.ImagesErr
	}
	refs := make([]model.ImageRef, len(p.ImageList))
	for i, img := range p.ImageList {
		refs[i] = img.Ref
	}
	return refs, nil
}

func (p *FakePage) ResolveImage(ref model.ImageRef) (*model.RawImage, error) {
	p.Resolved = append(p.Resolved, ref)
	for _, img := range p.ImageList {
		if img.Ref != ref {
			continue
		}
		if img.Err != nil {
			return nil, img.Err
		}
		return &model.RawImage{Ref: ref, Data: img.Data}, nil
	}
	return nil, fmt.Errorf("unknown image %v", ref)
}

// FakeDocument is an in-memory model.Document. WritePage writes a small
// placeholder file so that file sizes can be measured.
type FakeDocument struct {
	SrcPath  string
	Pages    []*FakePage
	WriteErr error
	Closed   bool
}

func (d *FakeDocument) Path() string { return d.SrcPath }

func (d *FakeDocument) PageCount() int { return len(d.Pages) }

func (d *FakeDocument) Page(index int) (model.Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	return d.Pages[index], nil
}

func (d *FakeDocument) WritePage(index int, outFile string) error {
	if d.WriteErr != nil {
		return d.WriteErr
	}
	return os.WriteFile(outFile, []byte(fmt.Sprintf("%%PDF-1.7 page %d\n", index+1)), 0644)
}

func (d *FakeDocument) Close() error {
	d.Closed = true
	return nil
}

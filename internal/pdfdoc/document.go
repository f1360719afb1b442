// Package pdfdoc implements the document and page collaborators on top of
// pdfcpu.
package pdfdoc

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"

	domain "pdftriage/internal/model"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

// NewConfiguration returns the pdfcpu configuration used for reading and
// writing. Validation is relaxed so that slightly malformed files still load.
func NewConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Document is a PDF opened with pdfcpu.
type Document struct {
	path      string
	ctx       *model.Context
	pageCount int
}

// Compile-time interface assertion
var _ domain.Document = (*Document)(nil)

// Open reads and validates the PDF at path. The cross reference table is not
// optimized: merging identical resources would change the image counts.
func Open(path string, conf *model.Configuration) (*Document, error) {
	if conf == nil {
		conf = NewConfiguration()
	} else {
		// The context keeps a pointer to its configuration and writes to it;
		// each document gets its own copy so documents can be processed in parallel.
		c := *conf
		conf = &c
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	ctx, err := api.ReadAndValidate(f, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	return &Document{
		path:      path,
		ctx:       ctx,
		pageCount: ctx.PageCount,
	}, nil
}

// NewOpener returns an Opener bound to conf.
func NewOpener(conf *model.Configuration) domain.Opener {
	return func(path string) (domain.Document, error) {
		doc, err := Open(path, conf)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

func (d *Document) Path() string { return d.path }

func (d *Document) PageCount() int { return d.pageCount }

// Page returns the page at the 0-based index.
func (d *Document) Page(index int) (domain.Page, error) {
	if d.ctx == nil {
		return nil, errors.Errorf("%s: document is closed", d.path)
	}
	if index < 0 || index >= d.pageCount {
		return nil, errors.Errorf("%s: page index %d out of range (0..%d)", d.path, index, d.pageCount-1)
	}
	return &Page{ctx: d.ctx, nr: index + 1}, nil
}

// WritePage writes the page at the 0-based index to outFile as a structural
// single-page subset of the source document. The page is copied out of the
// parsed context; the source file is not read again.
func (d *Document) WritePage(index int, outFile string) error {
	if d.ctx == nil {
		return errors.Errorf("%s: document is closed", d.path)
	}
	if index < 0 || index >= d.pageCount {
		return errors.Errorf("%s: page index %d out of range (0..%d)", d.path, index, d.pageCount-1)
	}
	ctxDest, err := pdfcpu.ExtractPages(d.ctx, []int{index + 1}, false)
	if err != nil {
		return errors.Wrapf(err, "extract page %d of %s", index+1, d.path)
	}
	if err := api.WriteContextFile(ctxDest, outFile); err != nil {
		return errors.Wrapf(err, "write page %d of %s", index+1, d.path)
	}
	return nil
}

// Close releases the parsed document.
func (d *Document) Close() error {
	d.ctx = nil
	return nil
}

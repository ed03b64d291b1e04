package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/splitfire/splitfire/internal/chunk"
)

// Options configures the pdfcpu-backed Access.
type Options struct {
	// MaxFileBytes rejects documents larger than this before parsing.
	// Zero means no limit.
	MaxFileBytes int64
}

// CpuAccess implements Access with pdfcpu.
type CpuAccess struct {
	opts Options
	conf *model.Configuration
}

// NewAccess returns a pdfcpu-backed Access.
func NewAccess(opts Options) *CpuAccess {
	conf := model.NewDefaultConfiguration()
	return &CpuAccess{opts: opts, conf: conf}
}

// Open validates the file and parses it into memory. The returned document
// keeps the source path for subset writing.
func (a *CpuAccess) Open(path string) (Document, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnreadable, path, err)
	}

	if a.opts.MaxFileBytes > 0 && fi.Size() > a.opts.MaxFileBytes {
		return nil, fmt.Errorf("%w: %s is %.1fMB, limit is %.1fMB",
			ErrUnreadable, path, mb(fi.Size()), mb(a.opts.MaxFileBytes))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, a.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnreadable, path, describeParseError(err))
	}

	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrUnreadable, path)
	}

	return &cpuDocument{
		path: path,
		size: fi.Size(),
		ctx:  ctx,
		conf: a.conf,
	}, nil
}

type cpuDocument struct {
	path string
	size int64
	ctx  *model.Context
	conf *model.Configuration
}

func (d *cpuDocument) PageCount() int {
	return d.ctx.PageCount
}

// PageText extracts the page's content stream and decodes the text-show
// operators. Pages whose streams carry no text return "".
func (d *cpuDocument) PageText(page int) (string, error) {
	if page < 1 || page > d.ctx.PageCount {
		return "", fmt.Errorf("%w: page %d of %d", chunk.ErrOutOfRange, page, d.ctx.PageCount)
	}

	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return "", fmt.Errorf("%w: extracting page %d content: %v", ErrUnreadable, page, err)
	}
	if r == nil {
		return "", nil
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: reading page %d content: %v", ErrUnreadable, page, err)
	}

	return DecodeContentText(string(raw)), nil
}

// WriteSubset writes an inclusive page range to a new PDF, re-reading the
// source file so the in-memory context stays untouched.
func (d *cpuDocument) WriteSubset(r chunk.PageRange, dest string) error {
	selection := []string{r.String()}
	if err := api.TrimFile(d.path, dest, selection, d.conf); err != nil {
		return fmt.Errorf("writing pages %s of %s to %s: %w", r, d.path, dest, err)
	}
	return nil
}

func (d *cpuDocument) Info() DocumentInfo {
	return DocumentInfo{
		Path:          d.path,
		FileSizeBytes: d.size,
		TotalPages:    d.ctx.PageCount,
		HasBookmarks:  d.hasBookmarks(),
		Title:         strings.TrimSpace(d.ctx.Title),
		Creator:       strings.TrimSpace(d.ctx.Creator),
		Subject:       strings.TrimSpace(d.ctx.Subject),
		CreationDate:  strings.TrimSpace(d.ctx.XRefTable.CreationDate),
	}
}

// hasBookmarks reports whether the document catalog carries an outline tree.
func (d *cpuDocument) hasBookmarks() bool {
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return false
	}
	_, found := rootDict.Find("Outlines")
	return found
}

func (d *cpuDocument) Close() error {
	d.ctx = nil
	return nil
}

// describeParseError turns pdfcpu parse failures into user-facing causes.
func describeParseError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "encrypt") || strings.Contains(msg, "password"):
		return "document is password protected"
	case strings.Contains(msg, "corrupt") || strings.Contains(msg, "xref"):
		return "document appears to be corrupted"
	default:
		return err.Error()
	}
}

func mb(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

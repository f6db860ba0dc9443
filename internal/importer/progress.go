package importer

import "io"

// Progress observes a streaming import. Update receives the cumulative number
// of bytes consumed so far; Complete is called once after a successful import.
// Implementations must return quickly.
type Progress interface {
	Update(consumed int64)
	Complete()
}

// progressReader reports bytes consumed from the underlying reader.
type progressReader struct {
	r        io.Reader
	progress Progress
	consumed int64
}

func newProgressReader(r io.Reader, progress Progress) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{r: r, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.consumed += int64(n)
		p.progress.Update(p.consumed)
	}
	return n, err
}

package codec

import (
	"sync"

	"github.com/minio/minlz"
)

var pool = &compressPool{}

type compressPool struct {
	read  sync.Pool
	write sync.Pool
}

func (p *compressPool) GetReader() *minlz.Reader {
	v := p.read.Get()
	if v != nil {
		return v.(*minlz.Reader)
	}
	return minlz.NewReader(nil)
}

func (p *compressPool) PutReader(r *minlz.Reader) {
	r.Reset(nil)
	p.read.Put(r)
}

func (p *compressPool) GetWriter() *minlz.Writer {
	v := p.write.Get()
	if v != nil {
		return v.(*minlz.Writer)
	}
	return minlz.NewWriter(nil)
}

func (p *compressPool) PutWriter(w *minlz.Writer) {
	w.Reset(nil)
	p.write.Put(w)
}

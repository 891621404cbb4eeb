// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Remixer changes the channel count of a Source.
//
// Down-mixing averages every source channel j into output channel j % n, so
// a mono target averages all channels. Up-mixing repeats source channels
// cyclically, so mono is duplicated into every output channel.
type Remixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewRemixer(src Source, channels int) (*Remixer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: remix to %d channels", ErrInvalidBuffer, channels)
	}

	return &Remixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

// NewMonoMixer down-mixes src to a single channel.
func NewMonoMixer(src Source) *Remixer {
	m, _ := NewRemixer(src, 1)
	return m
}

func (m *Remixer) SampleRate() int { return m.src.SampleRate() }
func (m *Remixer) Channels() int   { return m.channels }
func (m *Remixer) BufSize() int    { return m.src.BufSize() }

func (m *Remixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *Remixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * in

	// Grow tmp if needed but never shrink it.
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	got := n / in

	switch {
	case m.channels == 1:
		inv := float32(1) / float32(in)
		for f := range got {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range got {
			v := m.tmp[f]
			base := f * m.channels
			for c := range m.channels {
				dst[base+c] = v
			}
		}
	case m.channels > in:
		for f := range got {
			src, out := m.tmp[f*in:(f+1)*in], dst[f*m.channels:(f+1)*m.channels]
			for c := range out {
				out[c] = src[c%in]
			}
		}
	default:
		// Count how many source channels fold into each output channel.
		for f := range got {
			src, out := m.tmp[f*in:(f+1)*in], dst[f*m.channels:(f+1)*m.channels]
			clear(out)
			for j, v := range src {
				out[j%m.channels] += v
			}
			for c := range out {
				out[c] /= float32(foldCount(in, m.channels, c))
			}
		}
	}

	return got * m.channels, err
}

// foldCount is the number of source channels j < in with j % out == c.
func foldCount(in, out, c int) int {
	n := in / out
	if c < in%out {
		n++
	}

	return n
}

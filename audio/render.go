// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
)

// Node is one stage of a processing Graph. Apply wraps src with the stage's
// transform; it must not read from src itself.
type Node interface {
	Apply(src Source) (Source, error)
}

// NodeFunc adapts a plain function to Node.
type NodeFunc func(src Source) (Source, error)

func (f NodeFunc) Apply(src Source) (Source, error) { return f(src) }

// Graph is an ordered chain of nodes. An empty Graph renders an identical copy
// of its input.
type Graph []Node

// Gain scales every sample by factor.
func Gain(factor float32) Node {
	return NodeFunc(func(src Source) (Source, error) {
		return &gainSource{Source: src, factor: factor}, nil
	})
}

// Resample converts the stream to rate Hz.
func Resample(rate int) Node {
	return NodeFunc(func(src Source) (Source, error) {
		if rate <= 0 {
			return nil, fmt.Errorf("%w: resample to %d Hz", ErrInvalidBuffer, rate)
		}
		if rate == src.SampleRate() {
			return src, nil
		}

		return NewResampler(src, rate), nil
	})
}

// Remix converts the stream to the given channel count.
func Remix(channels int) Node {
	return NodeFunc(func(src Source) (Source, error) {
		return NewRemixer(src, channels)
	})
}

type gainSource struct {
	Source
	factor float32
}

func (g *gainSource) ReadSamples(dst []float32) (int, error) {
	n, err := g.Source.ReadSamples(dst)
	for i := range n {
		dst[i] *= g.factor
	}

	return n, err
}

// DefaultBlockFrames is the render block size used when Renderer.BlockFrames
// is zero.
const DefaultBlockFrames = 4096

// Renderer runs a Graph over a Buffer in a single non-real-time pass.
//
// Rendering is deterministic: the output only depends on the input buffer and
// the graph. The zero value is ready to use and has no frame limit.
type Renderer struct {
	// MaxFrames caps the output length; zero means unlimited. Exceeding it
	// yields a *RenderError.
	MaxFrames int
	// BlockFrames is the number of frames pulled per step between
	// cancellation checks.
	BlockFrames int
}

// Render streams in through graph and collects the result into a new Buffer.
// The input is never modified. Failures of the graph are reported as
// *RenderError (matching ErrRender); context cancellation is returned as is.
func (r Renderer) Render(ctx context.Context, in *Buffer, graph Graph) (*Buffer, error) {
	var src Source = NewBufferSource(in)

	for i, node := range graph {
		next, err := node.Apply(src)
		if err != nil {
			return nil, &RenderError{Limit: r.MaxFrames, Err: fmt.Errorf("node %d: %w", i, err)}
		}
		src = next
	}
	defer src.Close()

	channels, rate := src.Channels(), src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return nil, &RenderError{
			Limit: r.MaxFrames,
			Err:   fmt.Errorf("graph produced %d channels at %d Hz", channels, rate),
		}
	}

	expected := int((int64(in.Frames())*int64(rate) + int64(in.SampleRate()) - 1) / int64(in.SampleRate()))
	if r.MaxFrames > 0 && expected > r.MaxFrames {
		return nil, &RenderError{Frames: expected, Limit: r.MaxFrames}
	}

	block := r.BlockFrames
	if block <= 0 {
		block = DefaultBlockFrames
	}

	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, 0, expected)
	}

	buf := make([]float32, block*channels)
	frames := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.ReadSamples(buf)
		got := n / channels
		if r.MaxFrames > 0 && frames+got > r.MaxFrames {
			return nil, &RenderError{Frames: frames + got, Limit: r.MaxFrames}
		}

		for f := range got {
			base := f * channels
			for c := range channels {
				out[c] = append(out[c], buf[base+c])
			}
		}
		frames += got

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &RenderError{Frames: frames, Limit: r.MaxFrames, Err: err}
		}
		if n == 0 {
			return nil, &RenderError{Frames: frames, Limit: r.MaxFrames, Err: io.ErrNoProgress}
		}
	}

	return NewBuffer(rate, out)
}

// SPDX-License-Identifier: EPL-2.0

package audxtract

import (
	"fmt"
	"io"

	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/utils"
)

// ResampleToMono16 streams src through a resampler and a mono down-mix and
// collects the result as 16-bit PCM, quantized like the WAV encoder. It never
// holds the float samples of the whole stream.
//
// bufferSize is the read block in samples; values below 1024 use 1024.
// It returns the samples and their rate, which is targetRate.
func ResampleToMono16(src audio.Source, targetRate, bufferSize int) ([]int16, int, error) {
	var (
		stage audio.Source = src
		err   error
	)
	for _, node := range (audio.Graph{audio.Resample(targetRate), audio.Remix(1)}) {
		if stage, err = node.Apply(stage); err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	buf := make([]float32, max(bufferSize, 1024))
	pcm16 := make([]int16, 0, targetRate*2)
	stalls := 0

	for {
		n, err := stage.ReadSamples(buf)
		if n > 0 {
			stalls = 0
			start := len(pcm16)
			pcm16 = append(pcm16, make([]int16, n)...)
			utils.Float32sToInt16s(pcm16[start:], buf[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
		if n == 0 {
			if stalls++; stalls >= 100 {
				return nil, targetRate, fmt.Errorf("%w", io.ErrNoProgress)
			}
		}
	}

	return pcm16, targetRate, nil
}

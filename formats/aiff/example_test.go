// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/formats/aiff"
	"github.com/ik5/audxtract/formats/wav"
)

// ExampleDecoder_Decode rewrites a studio AIFF take as 16-bit WAV. Deeper
// samples are quantized to 16 bits on the way out.
func ExampleDecoder_Decode() {
	in, err := os.Open("take.aif")
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	take, err := audio.DecodeBuffer(aiff.Decoder{}, in)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile("take.wav", wav.Encode(take), 0o644); err != nil {
		log.Fatal(err)
	}
}

// ExampleDecoder_Decode_wavInput shows that a WAV file handed to the AIFF
// decoder is refused.
func ExampleDecoder_Decode_wavInput() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("RIFF\x24\x00\x00\x00WAVEfmt ")))

	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile), errors.Is(err, audio.ErrDecode))
	// Output: true true
}

/*
NAME
  pcm16.go

DESCRIPTION
  pcm16.go folds stereo down to mono and downsamples by an integer factor,
  trimmed to the single mono 16-bit PCM case this module ever decodes a WAV
  file into.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wav

// foldStereo returns the left channel of an interleaved stereo sample
// slice.
func foldStereo(s []int16) []int16 {
	mono := make([]int16, len(s)/2)
	for i := range mono {
		mono[i] = s[i*2]
	}
	return mono
}

// downsample decimates s by the given integer ratio, averaging the
// dropped samples into the one that's kept. Any trailing samples that
// don't fill a full ratio-sized group are discarded.
func downsample(s []int16, ratio int) []int16 {
	out := make([]int16, len(s)/ratio)
	for i := range out {
		var sum int
		for j := 0; j < ratio; j++ {
			sum += int(s[i*ratio+j])
		}
		out[i] = int16(sum / ratio)
	}
	return out
}

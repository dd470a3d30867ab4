//go:build !((linux && cgo) || windows || darwin)

package audio

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries on linux.
const AudioAvailable = false

// DefaultDevice returns a device that refuses to open streams.
func DefaultDevice() Device {
	return noDevice{}
}

type noDevice struct{}

func (noDevice) Open(int, int) (OutputStream, error) {
	return nil, ErrAudioUnavailable
}

package emulator

import (
	"context"
)

// Run ticks the emulator until it is done, fails, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	done := false
	for !done {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

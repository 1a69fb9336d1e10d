package driver

import "time"

type SyncDriverOpt func(*SyncDriver)

func WithTickLength(tickLength time.Duration) SyncDriverOpt {
	return func(d *SyncDriver) {
		d.tickLength = tickLength
	}
}

// Package decimate implements the boxcar averaging/decimation stage
// shared by every pipeline mode, grounded on
// original_source/src/noptica.rs's Decimator.
package decimate

// Decimator accumulates max inputs and emits their truncating average,
// then resets. No state survives past one group.
type Decimator struct {
	acc   int64
	count uint32
	max   uint32
}

// New returns a Decimator that emits every max inputs.
func New(max uint32) *Decimator {
	return &Decimator{max: max}
}

// Input folds one value into the running sum. ok is true exactly when
// this call completed a group, in which case avg is its truncating
// average.
func (d *Decimator) Input(x int64) (avg int64, ok bool) {
	d.acc += x
	d.count++
	if d.count == d.max {
		avg = d.acc / int64(d.count)
		d.acc = 0
		d.count = 0
		return avg, true
	}
	return 0, false
}

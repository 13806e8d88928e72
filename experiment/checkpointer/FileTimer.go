package checkpointer

import (
	"fmt"
	"time"
)

// FileTimer returns a function generating checkpoint filenames stamped
// with the wall clock time at which the checkpoint is written
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, time.Now().UnixNano(),
			extension)
	}
}

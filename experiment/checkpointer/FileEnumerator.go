package checkpointer

import "fmt"

// FilenameEnumerator returns a function generating checkpoint
// filenames with a consecutive integer suffix, starting above start.
// The filename parameter is the full filename with its path, and the
// extension parameter determines the file extension.
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start

	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}

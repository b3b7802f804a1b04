// SPDX-License-Identifier: MIT

package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tempPair is the input/output file pair of one call. Both files exist from
// newTempPair until release.
type tempPair struct {
	in, out string
	log     zerolog.Logger
}

// tempStem builds "<tag>-<unixnano>-<pid>-<uuid>". The time and pid separate
// processes, the uuid separates goroutines that read the same clock.
func tempStem(tag string) string {
	return tag + "-" +
		strconv.FormatInt(time.Now().UnixNano(), 10) + "-" +
		strconv.Itoa(os.Getpid()) + "-" +
		uuid.NewString()
}

// newTempPair creates both files with O_EXCL so a name clash fails loudly
// instead of sharing a file.
func newTempPair(dir, tag string, log zerolog.Logger) (*tempPair, error) {
	stem := filepath.Join(dir, tempStem(tag))
	tp := &tempPair{in: stem + ".in", out: stem + ".out", log: log}

	if err := reserve(tp.in); err != nil {
		return nil, err
	}
	if err := reserve(tp.out); err != nil {
		tp.remove(tp.in)

		return nil, err
	}

	return tp, nil
}

func reserve(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("temp file %s: %w", path, err)
	}
	TempFilesActive.Inc()

	return f.Close()
}

// release removes both files, or keeps them when keep is set. Either way the
// pair stops counting as active.
func (tp *tempPair) release(keep bool) {
	if keep {
		TempFilesActive.Sub(2)
		tp.log.Warn().Str("in", tp.in).Str("out", tp.out).Msg("keeping temp files of failed call")

		return
	}
	tp.remove(tp.in)
	tp.remove(tp.out)
}

func (tp *tempPair) remove(path string) {
	TempFilesActive.Dec()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		tp.log.Warn().Err(err).Str("path", path).Msg("temp file cleanup failed")
	}
}

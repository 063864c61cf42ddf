package telemetry

import (
	"bufio"
	"io"
	"os"
	"strings"

	"codeberg.org/mutker/batlab/internal/errors"
)

// ReadFile ingests the run log at path.
func ReadFile(path string) ([]Sample, error) {
	errFactory := errors.New()

	f, err := os.Open(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenLog, err)
	}
	defer f.Close()

	samples, err := Read(f)
	if err != nil {
		if errors.HasCode(err, ErrNoSamples) {
			return nil, errFactory.WithData(ErrNoSamples, path)
		}
		return nil, err
	}
	return samples, nil
}

// Read parses one sample per non-blank line of r, in order. It fails only on a
// read error or when r holds no usable lines.
func Read(r io.Reader) ([]Sample, error) {
	errFactory := errors.New()
	reader := bufio.NewReader(r)

	var samples []Sample
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			samples = append(samples, ParseLine(line))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errFactory.Wrap(ErrReadLog, err)
		}
	}

	if len(samples) == 0 {
		return nil, errFactory.New(ErrNoSamples)
	}

	return samples, nil
}

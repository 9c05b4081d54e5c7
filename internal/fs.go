package internal

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

func WriteYAML(filename string, value any) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err = CloseError(err, file.Close())
	}()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

// ReadYAML decodes filename into value. It reports false without error when
// the file does not exist.
func ReadYAML(filename string, value any) (found bool, err error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	EnvironmentVariablePrefix = "CAMS_"
	fileSuffix                = "_FILE"
)

// SetFlagsFromEnvVariables sets each flag from an environment variable whose
// name starts with `CAMS_`, e.g. --database is set from CAMS_DATABASE. A flag
// can alternatively be set from a file whose path is named by the variable
// with a further `_FILE` suffix, e.g. CAMS_DATABASE_FILE; the file's contents
// become the flag's value.
func SetFlagsFromEnvVariables(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		envVar := flagToEnvVarName(f)
		if val, present := os.LookupEnv(envVar); present {
			fs.Set(f.Name, val)
			return
		}
		// flags already ending in _file are set directly, not via a path
		if strings.HasSuffix(envVar, fileSuffix) {
			return
		}
		if path, present := os.LookupEnv(envVar + fileSuffix); present {
			contents, readErr := os.ReadFile(path)
			if readErr != nil {
				err = fmt.Errorf("reading %s: %w", envVar+fileSuffix, readErr)
				return
			}
			fs.Set(f.Name, string(contents))
		}
	})
	return err
}

func flagToEnvVarName(f *pflag.Flag) string {
	return fmt.Sprintf("%s%s", EnvironmentVariablePrefix, strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"))
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nconklindev/habatan/internal/converter"
	"github.com/nconklindev/habatan/internal/sheet"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyInput   = "input"
	keyOutput  = "output"
	keyMarker  = "marker"
	keyKey     = "key"
	keyCharset = "charset"
	keyPreview = "preview"
)

// settings is the resolved configuration for one run.
type settings struct {
	Input   string
	Output  string
	Marker  string
	Key     string
	Charset string
	Preview int
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyInput, converter.DefaultInputFile)
	v.SetDefault(keyOutput, converter.DefaultOutputFile)
	v.SetDefault(keyMarker, converter.DefaultKeyColumn)
	v.SetDefault(keyKey, converter.DefaultKeyColumn)
	v.SetDefault(keyCharset, sheet.DefaultCharset)
	v.SetDefault(keyPreview, converter.DefaultPreviewRows)
	return v
}

// initConfig loads habatan.yaml from the working directory or
// ~/.config/habatan, or the file named by --config, and binds HABATAN_*
// environment variables.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("habatan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "habatan"))
		}
	}

	v.SetEnvPrefix("HABATAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// bindFlags ties the conversion flags of cmd to v.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, key := range []string{keyOutput, keyMarker, keyKey, keyCharset, keyPreview} {
		if f := cmd.Flags().Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve merges configuration with positional arguments, which win.
func resolve(v *viper.Viper, args []string) settings {
	s := settings{
		Input:   v.GetString(keyInput),
		Output:  v.GetString(keyOutput),
		Marker:  v.GetString(keyMarker),
		Key:     v.GetString(keyKey),
		Charset: v.GetString(keyCharset),
		Preview: v.GetInt(keyPreview),
	}
	if len(args) > 0 {
		s.Input = args[0]
	}
	if len(args) > 1 {
		s.Output = args[1]
	}
	return s
}

func (s settings) options() converter.Options {
	return converter.Options{
		InputPath:   s.Input,
		OutputPath:  s.Output,
		Marker:      s.Marker,
		KeyColumn:   s.Key,
		PreviewRows: s.Preview,
		Reader:      sheet.NewXLSReader(s.Charset),
	}
}

package conf

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

const tagName = "default"

var Cfg *Configuration

type Configuration struct {
	DataDir string `default:""`
	Log     struct {
		Level string `default:"info"`
	}
	Script struct {
		// worker goroutines for parallel script verification
		Par int `default:"4"`
	}
	Cache struct {
		// total cache budget in MiB, split by CalculateCacheSizes
		TotalBudget   int64 `default:"450"`
		TxIndex       bool  `default:"false"`
		FilterIndexes int   `default:"0"`
		Compression   bool  `default:"true"`
		MaxOpenFiles  int   `default:"64"`
	}
}

// InitConfig loads configuration with this precedence: environment
// variables (GLOBENEW_*), then the yaml file at confPath if one exists,
// then the struct-tag defaults.
func InitConfig(confPath string) *Configuration {
	config := &Configuration{}
	viper.SetEnvPrefix("globenew")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")

	setFieldDefaults(reflect.TypeOf(*config), "")

	if confPath != "" {
		file, err := os.Open(confPath)
		if err == nil {
			defer file.Close()
			if err := viper.ReadConfig(file); err != nil {
				panic(err)
			}
		} else if !os.IsNotExist(err) {
			panic(err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		panic(err)
	}
	if config.DataDir == "" {
		config.DataDir = defaultDataDir()
	}
	Cfg = config
	return config
}

func setFieldDefaults(t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Name
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			setFieldDefaults(field.Type, key)
			continue
		}
		viper.SetDefault(key, field.Tag.Get(tagName))
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".globenew"
	}
	return filepath.Join(home, ".globenew")
}

// DataPath joins elem onto the configured data directory, creating the
// resulting directory if needed.
func DataPath(elem ...string) string {
	p := filepath.Join(append([]string{Cfg.DataDir}, elem...)...)
	if err := os.MkdirAll(p, 0740); err != nil && !os.IsExist(err) {
		panic(err)
	}
	return p
}

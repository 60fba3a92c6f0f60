package conf

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

type Opts struct {
	DataDir string `long:"datadir" description:"specified program data dir"`
	Reindex bool   `long:"reindex" description:"rebuild the block metadata store on start up"`

	DBCache       int64  `long:"dbcache" default:"-1" description:"total cache budget in MiB shared by the block metadata store, the coin database and the validation caches"`
	TxIndex       bool   `long:"txindex" description:"maintain a full transaction index"`
	FilterIndexes int    `long:"filterindexes" default:"-1" description:"number of optional filter indexes to maintain"`
	NoCompression bool   `long:"nocompression" description:"disable on-disk store compression"`
	MaxOpenFiles  int    `long:"maxopenfiles" default:"-1" description:"max simultaneously open database files"`
	ScriptPar     int    `long:"par" default:"-1" description:"script verification worker count"`
	LogLevel      string `long:"loglevel" description:"log level: emergency, alert, critical, error, warn, info, debug, notice"`
}

func InitArgs(args []string) (*Opts, error) {
	opts := new(Opts)
	_, err := flags.ParseArgs(opts, args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}
	return opts, nil
}

// ApplyArgs overlays command-line options onto the loaded configuration.
// Unset numeric options keep their sentinel and leave the config value.
func ApplyArgs(config *Configuration, opts *Opts) {
	if opts.DataDir != "" {
		config.DataDir = opts.DataDir
	}
	if opts.DBCache >= 0 {
		config.Cache.TotalBudget = opts.DBCache
	}
	if opts.TxIndex {
		config.Cache.TxIndex = true
	}
	if opts.FilterIndexes >= 0 {
		config.Cache.FilterIndexes = opts.FilterIndexes
	}
	if opts.NoCompression {
		config.Cache.Compression = false
	}
	if opts.MaxOpenFiles >= 0 {
		config.Cache.MaxOpenFiles = opts.MaxOpenFiles
	}
	if opts.ScriptPar >= 0 {
		config.Script.Par = opts.ScriptPar
	}
	if opts.LogLevel != "" {
		config.Log.Level = opts.LogLevel
	}
}

func (opts *Opts) String() string {
	return fmt.Sprintf("datadir:%s dbcache:%d txindex:%v reindex:%v",
		opts.DataDir, opts.DBCache, opts.TxIndex, opts.Reindex)
}

package main

import (
	"github.com/cillian-osullivan/globenew/conf"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/logic/lconsensus"
	"github.com/cillian-osullivan/globenew/logic/ltx"
	"github.com/cillian-osullivan/globenew/model/utxo"
	"github.com/cillian-osullivan/globenew/persist/blkdb"
	"github.com/cillian-osullivan/globenew/persist/db"
)

func appInitMain(config *conf.Configuration, opts *conf.Opts) {
	sizes := conf.CalculateCacheSizes(config.Cache.TotalBudget<<20, config.Cache.TxIndex,
		config.Cache.FilterIndexes, config.Cache.Compression, config.Cache.MaxOpenFiles)
	log.Info("cache budgets: blocktree=%d coinsdb=%d coins=%d txindex=%d sigcache=%d",
		sizes.BlockTreeDB, sizes.CoinsDB, sizes.Coins, sizes.TxIndex, sizes.SigCache)

	lconsensus.InitSignatureCache(sizes.SigCache)

	utxoCfg := utxo.UtxoConfig{Do: &db.DBOption{
		FilePath:       conf.DataPath("chainstate"),
		CacheSize:      int(sizes.CoinsDB),
		MaxOpenFiles:   sizes.MaxOpenFiles,
		UseCompression: sizes.Compression,
	}}
	utxo.InitUtxoLruTip(&utxoCfg)

	blkdbCfg := blkdb.BlockTreeDBConfig{Do: &db.DBOption{
		FilePath:       conf.DataPath("blocks", "index"),
		CacheSize:      int(sizes.BlockTreeDB),
		MaxOpenFiles:   sizes.MaxOpenFiles,
		UseCompression: sizes.Compression,
		Wipe:           opts.Reindex,
	}}
	blkdb.InitBlockTreeDB(&blkdbCfg)
	if opts.Reindex {
		if err := blkdb.GetInstance().WriteReindexing(true); err != nil {
			log.Error("write reindex flag failed: %v", err)
		}
	}

	ltx.ScriptVerifyInit(config.Script.Par)
}

package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Chain struct {
		RPCURL string `env:"CHAIN_RPC_URL,required"`
		// Base mainnet.
		ChainID uint64 `env:"CHAIN_ID" envDefault:"8453"`

		TierRegistry string `env:"TIER_REGISTRY_ADDRESS" envDefault:"0x00000000fc84484d585C3cF48d213424DFDE43FD"`
		// USDC on Base.
		PaymentToken string `env:"PAYMENT_TOKEN_ADDRESS" envDefault:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
		FeeRecipient string `env:"FEE_RECIPIENT_ADDRESS,required"`
	}

	Farcaster struct {
		// Upstream client API serving profiles, pro status and direct casts.
		APIBase      string `env:"FC_API_BASE" envDefault:"https://client.farcaster.xyz"`
		APIToken     string `env:"FC_API_TOKEN" envDefault:""`
		FnameBase    string `env:"FNAME_REGISTRY_BASE" envDefault:"https://fnames.farcaster.xyz"`
		OperatorFID  uint64 `env:"OPERATOR_FID,required"`
		MiniAppURL   string `env:"MINI_APP_URL" envDefault:"http://localhost:3000"`
		ManifestPath string `env:"MANIFEST_PATH" envDefault:"manifest.json"`
	}
}

func Load() *Config {
	// Missing .env is fine, production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

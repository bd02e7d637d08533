package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Vocab     VocabConfig     `mapstructure:"vocab"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Quiet     bool            `mapstructure:"quiet"`
	LogLevel  string          `mapstructure:"log_level"`
	Color     string          `mapstructure:"color"`
}

type DataConfig struct {
	SourceLang      string `mapstructure:"source_lang"`
	TargetLang      string `mapstructure:"target_lang"`
	TrainPrefix     string `mapstructure:"train_prefix"`
	TinyTrainPrefix string `mapstructure:"tiny_train_prefix"`
	ValidPrefix     string `mapstructure:"valid_prefix"`
	TestPrefix      string `mapstructure:"test_prefix"`
	DestDir         string `mapstructure:"dest_dir"`
	NoEOS           bool   `mapstructure:"no_eos"`
}

type VocabConfig struct {
	ThresholdSrc int    `mapstructure:"threshold_src"`
	NumWordsSrc  int    `mapstructure:"num_words_src"`
	ThresholdTgt int    `mapstructure:"threshold_tgt"`
	NumWordsTgt  int    `mapstructure:"num_words_tgt"`
	SrcPath      string `mapstructure:"src_path"`
	TgtPath      string `mapstructure:"tgt_path"`
}

type TokenizerConfig struct {
	Kind      string `mapstructure:"kind"`
	ModelPath string `mapstructure:"model_path"`
	Normalize string `mapstructure:"normalize"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// binding ties a config key to the command-line flag that overrides it.
type binding struct {
	key  string
	flag string
}

var bindings = []binding{
	{"data.source_lang", "source-lang"},
	{"data.target_lang", "target-lang"},
	{"data.train_prefix", "train-prefix"},
	{"data.tiny_train_prefix", "tiny-train-prefix"},
	{"data.valid_prefix", "valid-prefix"},
	{"data.test_prefix", "test-prefix"},
	{"data.dest_dir", "dest-dir"},
	{"data.no_eos", "no-eos"},
	{"vocab.threshold_src", "threshold-src"},
	{"vocab.num_words_src", "num-words-src"},
	{"vocab.threshold_tgt", "threshold-tgt"},
	{"vocab.num_words_tgt", "num-words-tgt"},
	{"vocab.src_path", "vocab-src"},
	{"vocab.tgt_path", "vocab-tgt"},
	{"tokenizer.kind", "tokenizer"},
	{"tokenizer.model_path", "sentencepiece-model"},
	{"tokenizer.normalize", "normalize"},
	{"quiet", "quiet"},
	{"log_level", "log-level"},
	{"color", "color"},
}

func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			SourceLang: "en",
			TargetLang: "fr",
			DestDir:    "data-bin",
		},
		Vocab: VocabConfig{
			ThresholdSrc: 2,
			NumWordsSrc:  4000,
			ThresholdTgt: 2,
			NumWordsTgt:  4000,
		},
		Tokenizer: TokenizerConfig{
			Kind:      TokenizerWhitespace,
			Normalize: NormalizeNone,
		},
		LogLevel: "info",
		Color:    "auto",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("source-lang", defaults.Data.SourceLang, "Source language suffix")
	fs.String("target-lang", defaults.Data.TargetLang, "Target language suffix (empty for a single language)")
	fs.String("train-prefix", defaults.Data.TrainPrefix, "Train corpus prefix; <prefix>.<lang> is read")
	fs.String("tiny-train-prefix", defaults.Data.TinyTrainPrefix, "Tiny train corpus prefix")
	fs.String("valid-prefix", defaults.Data.ValidPrefix, "Validation corpus prefix")
	fs.String("test-prefix", defaults.Data.TestPrefix, "Test corpus prefix")
	fs.String("dest-dir", defaults.Data.DestDir, "Destination directory for dictionaries and datasets")
	fs.Bool("no-eos", defaults.Data.NoEOS, "Do not append </s> to binarized sentences")
	fs.Int("threshold-src", defaults.Vocab.ThresholdSrc, "Map source words seen fewer times to <unk>")
	fs.Int("num-words-src", defaults.Vocab.NumWordsSrc, "Source dictionary size including special symbols (0 = no cap)")
	fs.Int("threshold-tgt", defaults.Vocab.ThresholdTgt, "Map target words seen fewer times to <unk>")
	fs.Int("num-words-tgt", defaults.Vocab.NumWordsTgt, "Target dictionary size including special symbols (0 = no cap)")
	fs.String("vocab-src", defaults.Vocab.SrcPath, "Pre-built source dictionary")
	fs.String("vocab-tgt", defaults.Vocab.TgtPath, "Pre-built target dictionary")
	fs.String("tokenizer", defaults.Tokenizer.Kind, "Tokenizer: whitespace|sentencepiece")
	fs.String("sentencepiece-model", defaults.Tokenizer.ModelPath, "SentencePiece model for --tokenizer=sentencepiece")
	fs.String("normalize", defaults.Tokenizer.Normalize, "Unicode normalization before tokenizing: none|nfkc")
	fs.Bool("quiet", defaults.Quiet, "Suppress progress logging")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.String("color", defaults.Color, "Table styling: auto|yes|no")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)

	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("SEQPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("seqprep")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// bindFlags binds every registered flag to its config key. Flags missing from
// fs are skipped so commands may register a subset.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, b := range bindings {
		f := fs.Lookup(b.flag)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("%s: %w", b.flag, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("data.source_lang", c.Data.SourceLang)
	v.SetDefault("data.target_lang", c.Data.TargetLang)
	v.SetDefault("data.train_prefix", c.Data.TrainPrefix)
	v.SetDefault("data.tiny_train_prefix", c.Data.TinyTrainPrefix)
	v.SetDefault("data.valid_prefix", c.Data.ValidPrefix)
	v.SetDefault("data.test_prefix", c.Data.TestPrefix)
	v.SetDefault("data.dest_dir", c.Data.DestDir)
	v.SetDefault("data.no_eos", c.Data.NoEOS)
	v.SetDefault("vocab.threshold_src", c.Vocab.ThresholdSrc)
	v.SetDefault("vocab.num_words_src", c.Vocab.NumWordsSrc)
	v.SetDefault("vocab.threshold_tgt", c.Vocab.ThresholdTgt)
	v.SetDefault("vocab.num_words_tgt", c.Vocab.NumWordsTgt)
	v.SetDefault("vocab.src_path", c.Vocab.SrcPath)
	v.SetDefault("vocab.tgt_path", c.Vocab.TgtPath)
	v.SetDefault("tokenizer.kind", c.Tokenizer.Kind)
	v.SetDefault("tokenizer.model_path", c.Tokenizer.ModelPath)
	v.SetDefault("tokenizer.normalize", c.Tokenizer.Normalize)
	v.SetDefault("quiet", c.Quiet)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("color", c.Color)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
	Mode string `toml:"mode"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DataConfig points at the prebuilt artifacts. Relative paths resolve against Dir.
type DataConfig struct {
	Dir                   string `toml:"dir"`
	Graph                 string `toml:"graph"`
	Predicates            string `toml:"predicates"`
	PredicateEmbeddings   string `toml:"predicate_embeddings"`
	ReplacePredicates     string `toml:"replace_predicates"`
	CrowdEntities         string `toml:"crowd_entities"`
	CrowdEntityEmbeddings string `toml:"crowd_entity_embeddings"`
	EntityEmbeddings      string `toml:"entity_embeddings"`
	RelationEmbeddings    string `toml:"relation_embeddings"`
	EntityIDs             string `toml:"entity_ids"`
	RelationIDs           string `toml:"relation_ids"`
	Images                string `toml:"images"`
	CrowdDB               string `toml:"crowd_db"`
}

// Path resolves an artifact path against Dir.
func (d DataConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || d.Dir == "" {
		return p
	}
	return filepath.Join(d.Dir, p)
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type GraphConfig struct {
	Backend     string         `toml:"backend"` // memory | memgraph
	MovieClass  string         `toml:"movie_class"`
	PersonClass string         `toml:"person_class"`
	Memgraph    MemgraphConfig `toml:"memgraph"`
}

// ModelConfig describes a remote inference backend for the encoder or tagger.
type ModelConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	TimeoutMS int    `toml:"timeout_ms"`
	CacheSize int64  `toml:"cache_size"`
}

func (m ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMS) * time.Millisecond
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MatcherConfig struct {
	PredicateThreshold float32 `toml:"predicate_threshold"`
	CrowdThreshold     float32 `toml:"crowd_threshold"`
	MaxNgram           int     `toml:"max_ngram"`
	Stemming           bool    `toml:"stemming"`
}

type RelationConfig struct {
	Label     string `toml:"label"`
	Predicate string `toml:"predicate"`
}

type EmbeddingConfig struct {
	Relations  []RelationConfig `toml:"relations"`
	RecommendK int              `toml:"recommend_k"`
}

type CrowdConfig struct {
	MinWorkSeconds  float64 `toml:"min_work_seconds"`
	MinApprovalRate float64 `toml:"min_approval_rate"`
}

type ChatConfig struct {
	Enabled        bool `toml:"enabled"`
	PollIntervalMS int  `toml:"poll_interval_ms"`
	Concurrency    int  `toml:"concurrency"`
}

func (c ChatConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

type PromptsConfig struct {
	Tagger string `toml:"tagger"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Data      DataConfig      `toml:"data"`
	Graph     GraphConfig     `toml:"graph"`
	Encoder   ModelConfig     `toml:"encoder"`
	Tagger    ModelConfig     `toml:"tagger"`
	LLM       LLMConfig       `toml:"llm"`
	Matcher   MatcherConfig   `toml:"matcher"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Crowd     CrowdConfig     `toml:"crowd"`
	Chat      ChatConfig      `toml:"chat"`
	Prompts   PromptsConfig   `toml:"prompts"`
}

// defaultTaggerPrompt is the system instruction of the LLM tagger. The
// user's question is sent as the user message.
const defaultTaggerPrompt = `Extract the named entities (movie titles, people, organisations) mentioned in the user's message.
Copy every entity exactly as written in the message.
Respond only with JSON of the form {"entities": [{"entity_group": "PER|ORG|LOC|MISC", "word": "..."}]}.`

// Default returns the configuration used when a key is missing from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Data: DataConfig{
			Dir:                   "data",
			Graph:                 "14_graph.nt",
			Predicates:            "predicates_extended.csv",
			PredicateEmbeddings:   "embeddings2.npy",
			ReplacePredicates:     "replace_predicates_ner.csv",
			CrowdEntities:         "entities_crowd.csv",
			CrowdEntityEmbeddings: "entities_crowd_emb.npy",
			EntityEmbeddings:      "entity_embeds.npy",
			RelationEmbeddings:    "relation_embeds.npy",
			EntityIDs:             "entity_ids.del",
			RelationIDs:           "relation_ids.del",
			Images:                "images.json",
			CrowdDB:               "crowd.db",
		},
		Graph: GraphConfig{
			Backend:     "memory",
			MovieClass:  "http://www.wikidata.org/entity/Q2431196",
			PersonClass: "http://www.wikidata.org/entity/Q5",
			Memgraph:    MemgraphConfig{URI: "bolt://localhost:7687"},
		},
		Encoder: ModelConfig{
			Provider:  "tei",
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			BaseURL:   "http://localhost:8081",
			TimeoutMS: 5000,
			CacheSize: 50000,
		},
		Tagger: ModelConfig{
			Provider:  "huggingface",
			Model:     "dslim/bert-base-NER-uncased",
			BaseURL:   "http://localhost:8082",
			TimeoutMS: 5000,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
		},
		Matcher: MatcherConfig{
			PredicateThreshold: 0.75,
			CrowdThreshold:     0.9,
			MaxNgram:           5,
			Stemming:           true,
		},
		Embedding: EmbeddingConfig{
			Relations:  defaultRelations(),
			RecommendK: 3,
		},
		Crowd: CrowdConfig{MinWorkSeconds: 5, MinApprovalRate: 70},
		Chat:  ChatConfig{PollIntervalMS: 2000, Concurrency: 4},
		Prompts: PromptsConfig{
			Tagger: defaultTaggerPrompt,
		},
	}
}

func defaultRelations() []RelationConfig {
	return []RelationConfig{
		{Label: "director", Predicate: "http://www.wikidata.org/prop/direct/P57"},
		{Label: "screenwriter", Predicate: "http://www.wikidata.org/prop/direct/P58"},
		{Label: "genre", Predicate: "http://www.wikidata.org/prop/direct/P136"},
		{Label: "cast member", Predicate: "http://www.wikidata.org/prop/direct/P161"},
		{Label: "producer", Predicate: "http://www.wikidata.org/prop/direct/P162"},
		{Label: "production company", Predicate: "http://www.wikidata.org/prop/direct/P272"},
		{Label: "country of origin", Predicate: "http://www.wikidata.org/prop/direct/P495"},
		{Label: "original language of film or TV show", Predicate: "http://www.wikidata.org/prop/direct/P364"},
		{Label: "composer", Predicate: "http://www.wikidata.org/prop/direct/P86"},
		{Label: "director of photography", Predicate: "http://www.wikidata.org/prop/direct/P344"},
		{Label: "film editor", Predicate: "http://www.wikidata.org/prop/direct/P1040"},
	}
}

// Load reads a TOML file on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	cfg.Embedding.Relations = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if len(cfg.Embedding.Relations) == 0 {
		cfg.Embedding.Relations = defaultRelations()
	}

	return cfg, nil
}

// ApplyEnv overrides selected keys from the environment.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Data.Dir, "ATAI_DATA_DIR")
	setString(&c.Graph.Backend, "ATAI_GRAPH_BACKEND")
	setString(&c.Graph.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Graph.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Graph.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Encoder.Provider, "ATAI_ENCODER_PROVIDER")
	setString(&c.Encoder.BaseURL, "ATAI_ENCODER_URL")
	setString(&c.Encoder.APIKey, "ATAI_ENCODER_API_KEY")
	setString(&c.Tagger.Provider, "ATAI_TAGGER_PROVIDER")
	setString(&c.Tagger.BaseURL, "ATAI_TAGGER_URL")
	setString(&c.Tagger.APIKey, "ATAI_TAGGER_API_KEY")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")

	if v := os.Getenv("ATAI_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("ATAI_CHAT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Chat.Enabled = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

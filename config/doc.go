// Package config loads the application configuration from YAML.
//
// Lookup order is ./quorum.yaml, then ~/.config/quorum/config.yaml. When
// neither exists the defaults are written to the user path. Secrets are not
// stored in the file: the API key is read from the environment variable
// named by ai.api_key_env (QUORUM_API_KEY by default), which LoadEnv can
// populate from a .env file.
//
// Example file:
//
//	ai:
//	  generation_host: http://localhost:11434/v1
//	  generation_model: qwen2.5:3b
//	  embedding_url: http://localhost:11434/v1/embeddings
//	  embedding_model: embeddinggemma
//	  generation_timeout: 2m
//	store:
//	  type: file
//	  path: quorum.store
//	  chunk_size: 100
//	retrieval:
//	  top_k: 3
//	  vector_weight: 0.7
//	pipeline:
//	  domain: data science
package config

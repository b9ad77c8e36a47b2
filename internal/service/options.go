package service

import "github.com/timmy/themeboard/internal/config"

// PipelineConfigFrom converts the loaded pipeline section.
func PipelineConfigFrom(c *config.PipelineConfig) PipelineConfig {
	return PipelineConfig{
		Clusters:       c.Clusters,
		ClusterSeed:    c.ClusterSeed,
		ProjectionSeed: c.ProjectionSeed,
		KMeansInit:     c.KMeansInit,
		KMeansMaxIter:  c.KMeansMaxIter,
		Perplexity:     c.Perplexity,
		TSNEIterations: c.TSNEIterations,
		AssignMode:     c.AssignMode,
		CacheEnabled:   c.CacheEnabled,
	}
}

// RetryPolicyFrom converts the loaded retry section.
func RetryPolicyFrom(c *config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
		Multiplier:      c.Multiplier,
	}
}

// NewLabelerFromConfig builds the LLM labeler wrapped in the retry policy.
func NewLabelerFromConfig(llm *config.LLMConfig, retry *config.RetryConfig) ThemeLabeler {
	return NewRetryingLabeler(NewLLMLabeler(&LabelerConfig{
		Model:        llm.Model,
		APIKey:       llm.APIKey,
		BaseURL:      llm.BaseURL,
		MaxTokens:    llm.MaxTokens,
		Stop:         llm.Stop,
		Timeout:      llm.Timeout,
		SystemPrompt: llm.SystemPrompt,
	}), RetryPolicyFrom(retry))
}

package eval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/advenoh/ragchat/internal/llm"
	"github.com/advenoh/ragchat/internal/rag"
)

// Sample is one evaluated exchange: the question, the generated answer, the
// retrieved context, and the expected answer.
type Sample struct {
	Question    string
	Answer      string
	Contexts    []string
	GroundTruth string
}

// Scores holds the mean metric values over an evaluation run.
type Scores struct {
	Faithfulness     float64 `json:"faithfulness"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
	Samples          int     `json:"samples"`
}

const judgePreamble = `You are a strict evaluator of a question-answering system.
Score the case below on the single criterion given.
Respond with ONLY a number between 0.0 and 1.0, nothing else.`

var metricCriteria = map[string]string{
	"faithfulness":      "Is every claim in the answer supported by the retrieved excerpts? 1.0 = fully supported, 0.0 = unsupported.",
	"answer_relevancy":  "Does the answer directly address the question? 1.0 = fully on point, 0.0 = off topic or evasive.",
	"context_precision": "Are the retrieved excerpts relevant to the expected answer? 1.0 = all relevant, 0.0 = none relevant.",
}

// Evaluator scores samples with a judge model.
type Evaluator struct {
	judge llm.Client
}

// NewEvaluator creates an evaluator that scores with the given client.
func NewEvaluator(judge llm.Client) *Evaluator {
	return &Evaluator{judge: judge}
}

// CollectSamples asks the chain each item's question without history and pairs
// the answers with the expected ones.
func CollectSamples(ctx context.Context, chain *rag.Chain, items []Item) ([]Sample, error) {
	samples := make([]Sample, 0, len(items))
	for _, item := range items {
		result, err := chain.Ask(ctx, item.Question, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to answer %q: %w", item.Question, err)
		}
		contexts := make([]string, 0, len(result.Context))
		for _, chunk := range result.Context {
			contexts = append(contexts, chunk.Content)
		}
		samples = append(samples, Sample{
			Question:    item.Question,
			Answer:      result.Answer,
			Contexts:    contexts,
			GroundTruth: item.GroundTruth,
		})
	}
	return samples, nil
}

// Evaluate scores all samples on each metric and returns the means.
func (e *Evaluator) Evaluate(ctx context.Context, samples []Sample) (Scores, error) {
	if len(samples) == 0 {
		return Scores{}, nil
	}
	var scores Scores
	for _, sample := range samples {
		faithfulness, err := e.score(ctx, "faithfulness", sample)
		if err != nil {
			return Scores{}, err
		}
		relevancy, err := e.score(ctx, "answer_relevancy", sample)
		if err != nil {
			return Scores{}, err
		}
		precision, err := e.score(ctx, "context_precision", sample)
		if err != nil {
			return Scores{}, err
		}
		scores.Faithfulness += faithfulness
		scores.AnswerRelevancy += relevancy
		scores.ContextPrecision += precision
	}
	n := float64(len(samples))
	scores.Faithfulness /= n
	scores.AnswerRelevancy /= n
	scores.ContextPrecision /= n
	scores.Samples = len(samples)
	return scores, nil
}

func (e *Evaluator) score(ctx context.Context, metric string, sample Sample) (float64, error) {
	prompt := fmt.Sprintf("Criterion: %s\n\nQuestion:\n%s\n\nRetrieved excerpts:\n%s\n\nExpected answer:\n%s\n\nGenerated answer:\n%s",
		metricCriteria[metric],
		sample.Question,
		strings.Join(sample.Contexts, "\n---\n"),
		sample.GroundTruth,
		sample.Answer,
	)
	out, err := e.judge.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: judgePreamble},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return 0, fmt.Errorf("judge call for %s failed: %w", metric, err)
	}
	score, err := parseScore(out)
	if err != nil {
		return 0, fmt.Errorf("judge returned unusable %s score: %w", metric, err)
	}
	return score, nil
}

// parseScore reads the leading number of the judge's reply, clamped to [0, 1].
func parseScore(out string) (float64, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty reply")
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "."), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", out)
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, nil
}

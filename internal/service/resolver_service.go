package service

import (
	"context"
	"strings"

	"github.com/mention-me/AISlackBot/pkg/classifier"
)

// IResolverService turns free question text into either a confident single
// guess or a ranked candidate list.
type IResolverService interface {
	// Resolve classifies the question. The returned guess is the top
	// candidate's label when its score exceeds the confidence threshold,
	// empty otherwise; the full ranked list is always returned so callers
	// can cascade. Pure with respect to state.
	Resolve(ctx context.Context, question string) (guess string, candidates []classifier.Candidate)

	// Trained reports whether a classifier is available at all.
	Trained() bool
}

type resolverService struct {
	models    *classifier.Manager
	threshold float64
}

func NewResolverService(models *classifier.Manager, threshold float64) IResolverService {
	return &resolverService{
		models:    models,
		threshold: threshold,
	}
}

func (s *resolverService) Trained() bool {
	return s.models.Trained()
}

func (s *resolverService) Resolve(_ context.Context, question string) (string, []classifier.Candidate) {
	model := s.models.Current()
	if model == nil {
		return "", nil
	}

	candidates := model.Classify(strings.ToLower(question))
	if len(candidates) == 0 {
		return "", candidates
	}

	// The classifier already orders candidates descending; ties keep its
	// ordering, no secondary key is imposed here.
	if candidates[0].Score > s.threshold {
		return candidates[0].Label, candidates
	}
	return "", candidates
}

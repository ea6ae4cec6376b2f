package out

import (
	"context"

	profiledto "bookplus/internal/modules/profile/dto"
	profilein "bookplus/internal/modules/profile/port/in"
	"bookplus/internal/modules/reading/domain"
)

// ProfileBridge writes patterns to and reads baselines from the in-process
// profile module.
type ProfileBridge struct {
	profile profilein.Usecase
}

func NewProfileBridge(profile profilein.Usecase) *ProfileBridge {
	return &ProfileBridge{profile: profile}
}

func (b *ProfileBridge) PostReadingPattern(ctx context.Context, userKey string, pattern domain.ReadingPattern) error {
	return b.profile.RecordPattern(ctx, profiledto.PatternInput{
		UserKey:          userKey,
		ContentType:      pattern.ContentType,
		WPM:              pattern.WPM,
		DwellTimeSeconds: pattern.DwellTimeSeconds,
	})
}

func (b *ProfileBridge) LoadBaseline(ctx context.Context, userKey string) (domain.Baseline, error) {
	out, err := b.profile.Baseline(ctx, userKey)
	if err != nil {
		return domain.Baseline{}, err
	}
	return domain.Baseline{NormalWPM: out.NormalWPM, SkimWPM: out.SkimWPM}, nil
}

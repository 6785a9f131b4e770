package translator

import (
	"context"
	"fmt"
	"log/slog"
)

const transcriptionTemperature = 0.2

// Transcribe converts audio to text through the primary provider with a
// medical context prompt, then runs the advisory term validation over the
// transcript. Validation failures degrade to the raw transcript; only a
// transcription failure itself is surfaced as an error.
func (o *Orchestrator) Transcribe(ctx context.Context, audio []byte, language string) (TranscriptionResult, error) {
	if len(audio) == 0 {
		return TranscriptionResult{}, ErrEmptyInput
	}
	lang, err := NormalizeLanguageCode(language)
	if err != nil {
		return TranscriptionResult{}, err
	}

	if o.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RequestTimeout)
		defer cancel()
	}

	transcription, err := o.primary.Transcribe(ctx, audio, lang, transcribeContextPrompt, transcriptionTemperature)
	if err != nil {
		o.recordProviderFailure(err)
		return TranscriptionResult{}, fmt.Errorf("transcription failed: %w", err)
	}

	slog.Debug("transcription complete",
		"language", transcription.DetectedLanguage,
		"chars", len(transcription.Text))

	validated := o.ValidateTerms(ctx, transcription.Text)

	detected := transcription.DetectedLanguage
	if detected == "" {
		detected = lang
	}
	return TranscriptionResult{
		Text:             validated.Text,
		RawText:          transcription.Text,
		DetectedLanguage: detected,
		Confidence:       transcription.Confidence,
		Terms:            validated.Terms,
		Corrections:      validated.Corrections,
		Warnings:         validated.Warnings,
	}, nil
}

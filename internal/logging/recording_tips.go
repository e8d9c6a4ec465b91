package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/clicksplit/internal/click"
)

// RecordingTip represents a single piece of actionable advice derived from
// a click analysis.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "no_clicks")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// tempoBoundMargin is how close (in BPM) a song tempo may sit to the
// configured range before a half/double tempo is suspected.
const tempoBoundMargin = 3

// GenerateRecordingTips inspects an analysis and returns prioritised
// suggestions for the click recording or the analysis settings.
func GenerateRecordingTips(a *click.Analysis, cfg click.Config) []RecordingTip {
	if a == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []func(*click.Analysis, click.Config) *RecordingTip{
		tipNoClicks,
		tipClicksWithoutSongs,
		tipGapShorterThanBeat,
		tipSongWithoutTempo,
		tipTempoNearLimit,
		tipSectionsMerged,
		tipTempoChanges,
	}

	for _, rule := range rules {
		if tip := rule(a, cfg); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. A silent click channel makes every tuning tip moot.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "gap_shorter_than_beat":
			if fired["no_clicks"] {
				continue
			}
		case "tempo_near_limit":
			if fired["song_without_tempo"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipNoClicks fires when the click channel produced no onsets at all.
func tipNoClicks(a *click.Analysis, cfg click.Config) *RecordingTip {
	if len(a.Onsets) > 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		Message: fmt.Sprintf("No clicks were detected. Check the click channel selection, "+
			"or lower peak_prominence (currently %g) for a quiet click.", cfg.PeakProminence),
		RuleID: "no_clicks",
	}
}

// tipClicksWithoutSongs fires when clicks were found but every region was
// too short or too sparse to become a song.
func tipClicksWithoutSongs(a *click.Analysis, _ click.Config) *RecordingTip {
	if len(a.Onsets) == 0 || a.SongCount() > 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		Message: fmt.Sprintf("%d clicks were detected but no songs were formed. "+
			"The click may be intermittent; check for dropouts on the click channel.", len(a.Onsets)),
		RuleID: "clicks_without_songs",
	}
}

// tipGapShorterThanBeat fires when the slowest accepted tempo has a beat
// interval longer than the gap threshold, which fragments slow songs.
func tipGapShorterThanBeat(_ *click.Analysis, cfg click.Config) *RecordingTip {
	if cfg.MinBPM <= 0 {
		return nil
	}
	beat := 60.0 / float64(cfg.MinBPM)
	if cfg.GapThresholdSeconds > beat {
		return nil
	}
	return &RecordingTip{
		Priority: 8,
		Message: fmt.Sprintf("The gap threshold (%.2fs) is shorter than one beat at %d BPM (%.2fs). "+
			"Slow songs will be split apart; raise gap_threshold_seconds.", cfg.GapThresholdSeconds, cfg.MinBPM, beat),
		RuleID: "gap_shorter_than_beat",
	}
}

// tipSongWithoutTempo fires when a song section has no tempo estimate,
// which means its click rate fell outside the accepted BPM range.
func tipSongWithoutTempo(a *click.Analysis, cfg click.Config) *RecordingTip {
	var names []string
	for _, s := range a.Sections {
		if s.Type == click.Song && !s.HasBPM() {
			names = append(names, s.Name())
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		Message: fmt.Sprintf("No tempo could be estimated for %s. The click rate is outside %d-%d BPM; "+
			"widen min_bpm/max_bpm.", strings.Join(names, ", "), cfg.MinBPM, cfg.MaxBPM),
		RuleID: "song_without_tempo",
	}
}

// tipTempoNearLimit fires when a song tempo sits at the edge of the
// accepted range, a common sign of a half- or double-time click.
func tipTempoNearLimit(a *click.Analysis, cfg click.Config) *RecordingTip {
	for _, s := range a.Sections {
		if s.Type != click.Song || !s.HasBPM() {
			continue
		}
		if s.BPM-cfg.MinBPM <= tempoBoundMargin || cfg.MaxBPM-s.BPM <= tempoBoundMargin {
			return &RecordingTip{
				Priority: 6,
				Message: fmt.Sprintf("%s was estimated at %d BPM, close to the %d-%d BPM limit. "+
					"Check it is not running at half or double time.", s.Name(), s.BPM, cfg.MinBPM, cfg.MaxBPM),
				RuleID: "tempo_near_limit",
			}
		}
	}
	return nil
}

// tipSectionsMerged fires when short sections were absorbed into neighbours.
func tipSectionsMerged(a *click.Analysis, cfg click.Config) *RecordingTip {
	if a.Merged == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		Message: fmt.Sprintf("%d short sections were merged into their neighbours. "+
			"Lower min_section_length_seconds (currently %gs) to keep them separate.", a.Merged, cfg.MinSectionLengthSeconds),
		RuleID: "sections_merged",
	}
}

// tipTempoChanges fires when a continuous click region was split on tempo.
func tipTempoChanges(a *click.Analysis, cfg click.Config) *RecordingTip {
	if a.SubRegions <= a.Regions {
		return nil
	}
	return &RecordingTip{
		Priority: 3,
		Message: fmt.Sprintf("%d click regions were split on a tempo change. If these are single songs "+
			"with a tempo ramp, raise bpm_change_threshold (currently %d).", a.SubRegions-a.Regions, cfg.BPMChangeThreshold),
		RuleID: "tempo_changes",
	}
}

package config

// SettingsDiff describes what changed between two loaded [Settings].
// Only fields the orchestrator and engine can safely pick up without a
// restart are tracked (model paths require reloading a backend and are
// reported but not auto-applied by the watcher itself).
type SettingsDiff struct {
	StrategyChanged   bool
	NewStrategy       StrategyMode
	NumCandidatesDiff bool
	NewNumCandidates  int
	ModelChanged      bool
	LightModelChanged bool
	LearningChanged   bool
}

// Diff compares old and new settings and reports what changed.
func Diff(old, new *Settings) SettingsDiff {
	d := SettingsDiff{}

	if old.Conversion.Strategy != new.Conversion.Strategy {
		d.StrategyChanged = true
		d.NewStrategy = new.Conversion.Strategy
	}
	if old.Conversion.NumCandidates != new.Conversion.NumCandidates {
		d.NumCandidatesDiff = true
		d.NewNumCandidates = new.Conversion.NumCandidates
	}
	if old.Conversion.Model != new.Conversion.Model {
		d.ModelChanged = true
	}
	if old.Conversion.LightModel != new.Conversion.LightModel {
		d.LightModelChanged = true
	}
	if old.Learning.Enabled != new.Learning.Enabled || old.Learning.MaxEntries != new.Learning.MaxEntries {
		d.LearningChanged = true
	}

	return d
}

package model

// Reminder interval bounds, in minutes.
const (
	MinRemindInterval     = 1
	MaxRemindInterval     = 24 * 60
	DefaultRemindInterval = 60
)

const (
	DefaultHabitName   = "Smoking"
	DefaultNotifyTitle = "Smoke reminder"
)

// Quit-tracking defaults.
const (
	DefaultBaselinePerDay = 20
	DefaultPackPrice      = 25.0
	DefaultUnitsPerPack   = 20
	DefaultDailyTarget    = 5
	DefaultSavingsTarget  = 1000.0
)

// Settings is the singleton user configuration. The quit-tracking fields keep
// the JSON names older exports use.
type Settings struct {
	HabitName      string `json:"habitName"`
	NotifyTitle    string `json:"notifyTitle"`
	RemindInterval int    `json:"remindInterval"` // minutes

	BaselinePerDay int     `json:"dailySmokes"` // units a day before quitting
	PackPrice      float64 `json:"cigarettePrice"`
	UnitsPerPack   int     `json:"cigarettesPerPack"`
	DailyTarget    int     `json:"targetDailySmokes"`
	SavingsTarget  float64 `json:"targetSavings"`
}

// DefaultSettings returns the hardcoded defaults.
func DefaultSettings() Settings {
	return Settings{
		HabitName:      DefaultHabitName,
		NotifyTitle:    DefaultNotifyTitle,
		RemindInterval: DefaultRemindInterval,
		BaselinePerDay: DefaultBaselinePerDay,
		PackPrice:      DefaultPackPrice,
		UnitsPerPack:   DefaultUnitsPerPack,
		DailyTarget:    DefaultDailyTarget,
		SavingsTarget:  DefaultSavingsTarget,
	}
}

// MergeDefaults returns s with every missing or invalid field replaced by its
// default. Stored values win per field.
func (s Settings) MergeDefaults() Settings {
	d := DefaultSettings()
	if s.HabitName != "" {
		d.HabitName = s.HabitName
	}
	if s.NotifyTitle != "" {
		d.NotifyTitle = s.NotifyTitle
	}
	if s.RemindInterval >= MinRemindInterval && s.RemindInterval <= MaxRemindInterval {
		d.RemindInterval = s.RemindInterval
	}
	if s.BaselinePerDay > 0 {
		d.BaselinePerDay = s.BaselinePerDay
	}
	if s.PackPrice > 0 {
		d.PackPrice = s.PackPrice
	}
	if s.UnitsPerPack > 0 {
		d.UnitsPerPack = s.UnitsPerPack
	}
	if s.DailyTarget > 0 {
		d.DailyTarget = s.DailyTarget
	}
	if s.SavingsTarget > 0 {
		d.SavingsTarget = s.SavingsTarget
	}
	return d
}

// ClampInterval forces minutes into [MinRemindInterval, MaxRemindInterval].
func ClampInterval(minutes int) int {
	if minutes < MinRemindInterval {
		return MinRemindInterval
	}
	if minutes > MaxRemindInterval {
		return MaxRemindInterval
	}
	return minutes
}

// SettingsInput carries settings as typed by a user. Empty strings keep the
// current value.
type SettingsInput struct {
	HabitName      string
	NotifyTitle    string
	RemindInterval string

	QuitDate       string // YYYY-MM-DD
	BaselinePerDay string
	PackPrice      string
	UnitsPerPack   string
	DailyTarget    string
	SavingsTarget  string
}

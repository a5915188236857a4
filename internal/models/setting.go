package models

// Setting is one row of the key/value settings table.
type Setting struct {
	Key   string `gorm:"primaryKey;size:32" json:"key"`
	Value string `gorm:"size:255" json:"value"`
}

// Settings table keys.
const (
	SettingAutoBackup   = "autoBackup"
	SettingUseBiometric = "useBiometric"
	SettingPIN          = "pin"
	SettingLastBackup   = "lastBackup"
	SettingLastScreen   = "lastScreen"
)

// Settings is the typed view of the settings table held in memory.
// AutoBackup must default to off; it is never enabled silently.
type Settings struct {
	AutoBackup   bool   `json:"autoBackup"`
	UseBiometric bool   `json:"useBiometric"`
	PINHash      string `json:"pin,omitempty"`
}

// DefaultSettings returns the settings applied when nothing is stored.
func DefaultSettings() Settings {
	return Settings{AutoBackup: false, UseBiometric: false}
}

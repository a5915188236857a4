package models

import "strconv"

// SettingsFromRows folds raw settings rows into the typed view, applying
// defaults for anything absent or unparseable.
func SettingsFromRows(rows []Setting) (Settings, int64, string) {
	settings := DefaultSettings()
	var lastBackup int64
	var lastScreen string

	for _, row := range rows {
		switch row.Key {
		case SettingAutoBackup:
			settings.AutoBackup = row.Value == "true"
		case SettingUseBiometric:
			settings.UseBiometric = row.Value == "true"
		case SettingPIN:
			settings.PINHash = row.Value
		case SettingLastBackup:
			if ts, err := strconv.ParseInt(row.Value, 10, 64); err == nil {
				lastBackup = ts
			}
		case SettingLastScreen:
			lastScreen = row.Value
		}
	}
	return settings, lastBackup, lastScreen
}

// SettingsRows flattens the typed settings back into table rows.
func SettingsRows(settings Settings, lastBackup int64, lastScreen string) []Setting {
	return []Setting{
		{Key: SettingAutoBackup, Value: strconv.FormatBool(settings.AutoBackup)},
		{Key: SettingUseBiometric, Value: strconv.FormatBool(settings.UseBiometric)},
		{Key: SettingPIN, Value: settings.PINHash},
		{Key: SettingLastBackup, Value: strconv.FormatInt(lastBackup, 10)},
		{Key: SettingLastScreen, Value: lastScreen},
	}
}

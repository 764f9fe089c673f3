package config

import "time"

// Config is the merged rememo configuration
type Config struct {
	// Directory holding the data files of the file backend
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// One of file, sqlite or memory
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Database used by the sqlite backend, defaults to rememo.db in DataDir
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`

	// Log destination, stderr when empty
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// IANA name of the zone that decides what "today" is, the system zone when empty
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

// NotificationsConfig configures the local notification platform
type NotificationsConfig struct {
	// Answer given when permission is requested: granted or denied
	PromptAnswer string `yaml:"prompt_answer" mapstructure:"prompt_answer"`

	// How often rememo watch looks for due notifications
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	ShowAlert bool `yaml:"show_alert" mapstructure:"show_alert"`
	PlaySound bool `yaml:"play_sound" mapstructure:"play_sound"`
	SetBadge  bool `yaml:"set_badge" mapstructure:"set_badge"`

	Channel ChannelConfig `yaml:"channel" mapstructure:"channel"`
}

// ChannelConfig describes the delivery channel created on registration
type ChannelConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	ID         string `yaml:"id" mapstructure:"id"`
	Name       string `yaml:"name" mapstructure:"name"`
	LightColor string `yaml:"light_color" mapstructure:"light_color"`
	Vibration  []int  `yaml:"vibration" mapstructure:"vibration"`
}

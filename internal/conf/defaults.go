// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "platewatch")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "platewatch.log")

	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.maintopic", "frigate")
	viper.SetDefault("mqtt.returntopic", "plate_recognizer")

	viper.SetDefault("frigate.plus", false)
	viper.SetDefault("frigate.cameras", []string{})
	viper.SetDefault("frigate.zones", []string{})
	viper.SetDefault("frigate.objects", []string{"car", "motorcycle", "bus"})
	viper.SetDefault("frigate.licenseplateminscore", 0.0)
	viper.SetDefault("frigate.maxattempts", 0)
	viper.SetDefault("frigate.requesttimeout", 30*time.Second)

	viper.SetDefault("recognizer.minscore", 0.0)
	viper.SetDefault("recognizer.platerecognizer.enabled", false)
	viper.SetDefault("recognizer.platerecognizer.apiurl", "https://api.platerecognizer.com/v1/plate-reader")
	viper.SetDefault("recognizer.platerecognizer.maxretries", 3)
	viper.SetDefault("recognizer.platerecognizer.timeout", 30*time.Second)
	viper.SetDefault("recognizer.codeproject.enabled", false)
	viper.SetDefault("recognizer.codeproject.timeout", 30*time.Second)

	viper.SetDefault("watchlist.plates", []string{})
	viper.SetDefault("watchlist.fuzzymatch", 0.0)

	viper.SetDefault("snapshots.save", false)
	viper.SetDefault("snapshots.always", false)
	viper.SetDefault("snapshots.drawbox", false)
	viper.SetDefault("snapshots.path", "plates/")

	viper.SetDefault("output.sqlite.path", "platewatch.db")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8080")

	viper.SetDefault("workers.count", 10)
	viper.SetDefault("workers.queuesize", 100)
}

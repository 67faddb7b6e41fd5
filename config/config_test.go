package config

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should expose the handover budgets", func() {
			_ = Setup()
			So(viper.GetInt(key.HandoverRobustRetries), ShouldEqual, 2)
			So(viper.GetInt(key.HandoverPlatformRetries), ShouldEqual, 1)
			So(viper.GetInt(key.HandoverAnomalyRetries), ShouldEqual, 2)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("monitor.anomaly_window_ms"), ShouldEqual, "monitor_anomaly_window_ms")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("A zero budget should be rejected", func() {
			viper.Set(key.HandoverPlatformRetries, 0)
			So(Validate(), ShouldNotBeNil)
		})

		Convey("An unknown queue mode should be rejected", func() {
			viper.Set(key.QueueMode, "random")
			So(Validate(), ShouldNotBeNil)
		})

		Reset(func() {
			viper.Set(key.HandoverPlatformRetries, Default[key.HandoverPlatformRetries].Value)
			viper.Set(key.QueueMode, Default[key.QueueMode].Value)
		})
	})
}

func TestMillis(t *testing.T) {
	Convey("Millis should read integer keys as milliseconds", t, func() {
		_ = Setup()
		So(Millis(key.PlayerImageDuration), ShouldEqual, 5*time.Second)
	})
}

func TestField(t *testing.T) {
	Convey("Field.Env should carry the application prefix", t, func() {
		f := Default[key.MonitorMinDuration]
		So(f.Env(), ShouldEqual, "DASHREEL_MONITOR_MIN_DURATION_MS")
	})
}

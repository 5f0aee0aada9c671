package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file", func() {
			data := `version = 0

[client]
api_endpoint = "http://cenace.local:8000"

[chat]
k = 4
filter = "tickets"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.APIEndpoint).To(Equal("http://cenace.local:8000"))
			Expect(cfg.Chat.K).To(Equal(uint(4)))
			Expect(cfg.Chat.Filter).To(Equal("tickets"))
		})

		It("fills in defaults for unset fields in a partial config", func() {
			data := `[events]
provider = "kafka"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Events.Provider).To(Equal("kafka"))
			Expect(cfg.Events.Topic).To(Equal(defaults.Events.Topic))
			Expect(cfg.Client).To(Equal(defaults.Client))
			Expect(cfg.Chat).To(Equal(defaults.Chat))
			Expect(cfg.Render).To(Equal(defaults.Render))
			Expect(cfg.Mock).To(Equal(defaults.Mock))
		})

		It("returns an error for invalid TOML", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[chat\nk = "), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})

		It("rejects unsupported versions", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 7\n"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 7")))
		})
	})

	Describe("SaveConfig", func() {
		It("writes a file that LoadConfig reads back", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Chat.LikePolicy = "rollback"
			cfg.Render.Width = 72
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("refuses a nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists values per key", func() {
			Expect(c.SetConfigValue("client.api_endpoint", "http://10.0.0.5:8000/")).To(Succeed())
			Expect(c.SetConfigValue("chat.k", "3")).To(Succeed())
			Expect(c.SetConfigValue("events.brokers", "a:9092,b:9092")).To(Succeed())

			v, err := c.GetConfigValue("client.api_endpoint")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("http://10.0.0.5:8000"))

			v, err = c.GetConfigValue("chat.k")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("3"))

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.BrokerList()).To(Equal([]string{"a:9092", "b:9092"}))
		})

		It("rejects unknown keys", func() {
			Expect(c.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))
			_, err := c.GetConfigValue("proxy.upstream")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("validates enumerated and numeric values", func() {
			Expect(c.SetConfigValue("chat.like_policy", "maybe")).NotTo(Succeed())
			Expect(c.SetConfigValue("events.provider", "nats")).NotTo(Succeed())
			Expect(c.SetConfigValue("mock.framing", "sse")).NotTo(Succeed())
			Expect(c.SetConfigValue("chat.k", "many")).To(MatchError(ContainSubstring("invalid value for chat.k")))
			Expect(c.SetConfigValue("client.timeout", "soon")).To(MatchError(ContainSubstring("invalid value for client.timeout")))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("returns every key in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(13))
		Expect(keys[0]).To(Equal("client.api_endpoint"))
		Expect(keys[len(keys)-1]).To(Equal("mock.framing"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
	})
})

var _ = Describe("Config helpers", func() {
	It("parses the timeout and falls back on bad values", func() {
		cfg := config.NewDefaultConfig()
		Expect(cfg.TimeoutDuration()).To(Equal(5 * time.Minute))

		cfg.Client.Timeout = "30s"
		Expect(cfg.TimeoutDuration()).To(Equal(30 * time.Second))

		cfg.Client.Timeout = "nope"
		Expect(cfg.TimeoutDuration()).To(Equal(5 * time.Minute))
	})

	It("splits lists ignoring blanks", func() {
		Expect(config.SplitList(" a , ,b,")).To(Equal([]string{"a", "b"}))
		Expect(config.SplitList("")).To(BeEmpty())
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("client.api_endpoint")).To(Equal(defaults.Client.APIEndpoint))
		Expect(v.GetUint("chat.k")).To(Equal(defaults.Chat.K))
		Expect(config.FromViper(v)).To(Equal(defaults))
	})

	It("reads config file values over defaults", func() {
		data := `[chat]
filter = "soluciones"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("chat.filter")).To(Equal("soluciones"))
		Expect(v.GetString("chat.like_policy")).To(Equal("accept"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[client]
api_endpoint = "http://file:8000"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		os.Setenv("CENACE_CLIENT_API_ENDPOINT", "http://env:8000")
		defer os.Unsetenv("CENACE_CLIENT_API_ENDPOINT")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.FromViper(v).Client.APIEndpoint).To(Equal("http://env:8000"))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bindflag-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var k uint
		var filter string
		config.AddUintFlag(cmd, config.ChatFlags, config.FlagK, &k)
		config.AddStringFlag(cmd, config.ChatFlags, config.FlagFilter, &filter)

		Expect(cmd.Flags().Set("k", "2")).To(Succeed())
		config.BindRegisteredFlags(v, cmd, config.ChatFlags, []string{config.FlagK, config.FlagFilter})

		Expect(v.GetUint("chat.k")).To(Equal(uint(2)))
		Expect(v.GetString("chat.filter")).To(Equal("None"))
	})

	It("takes name, shorthand, default and description from the FlagSet", func() {
		cmd := &cobra.Command{Use: "test"}
		var endpoint string
		config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &endpoint)

		f := cmd.Flags().Lookup("api-endpoint")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("a"))
		Expect(f.Usage).To(Equal("CENACE backend URL"))
		Expect(f.DefValue).To(Equal(config.NewDefaultConfig().Client.APIEndpoint))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.FlagSet{}, []string{"nonexistent"})
		Expect(v.GetString("mock.listen")).To(Equal(":8000"))
	})
})

package strategy

import (
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/where"
	"github.com/spf13/viper"
)

// Builtins returns the two built-in strategies: the robust backend for fragile codecs,
// and the platform backend for everything else.
func Builtins() []Strategy {
	return []Strategy{
		{
			Descriptor: Descriptor{
				ID:       RobustBackend,
				Priority: viper.GetInt(key.StrategyRobustPriority),
				Fallback: true,
			},
			Matcher: FragileCodec{ContainerBias: viper.GetBool(key.StrategyContainerBias)},
			Source:  "builtin",
		},
		{
			Descriptor: Descriptor{
				ID:       PlatformBackend,
				Priority: viper.GetInt(key.StrategyPlatformPriority),
			},
			Matcher: AcceptAll{},
			Source:  "builtin",
		},
	}
}

// Default builds the chain from the built-ins plus, when enabled, the user's Lua strategies.
func Default() (*Chain, error) {
	strategies := Builtins()
	if viper.GetBool(key.StrategyScripts) {
		strategies = append(strategies, LoadScripts(where.Strategies(), []string{RobustBackend, PlatformBackend})...)
	}
	return NewChain(strategies...)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigArgs(t *testing.T) {
	cases := []struct {
		args []string
		want []string
	}{
		{args: nil, want: nil},
		{args: []string{"serve"}, want: nil},
		{args: []string{"-c", "prod.yml", "serve"}, want: []string{"-c", "prod.yml"}},
		{args: []string{"confirm", "--id", "abc", "--config", "prod.yml"}, want: []string{"-c", "prod.yml"}},
		{args: []string{"serve", "--config=prod.yml"}, want: []string{"-c", "prod.yml"}},
		{args: []string{"serve", "-c"}, want: nil},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, configArgs(tc.args))
	}
}

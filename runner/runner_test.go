package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name   string
		cmd    string
		target string
		want   string
	}{
		{"placeholder", "SteamDeck=0 %command%", "./game", "SteamDeck=0 ./game"},
		{"placeholder in the middle", "gamemoderun %command% --fullscreen", "./game", "gamemoderun ./game --fullscreen"},
		{"repeated placeholder", "%command% && %command%", "true", "true && true"},
		{"no placeholder", "DXVK_HUD=fps", "./game", "DXVK_HUD=fps ./game"},
		{"empty target", "PROTON_LOG=1 %command%", "", "PROTON_LOG=1"},
		{"empty target no placeholder", "  PROTON_LOG=1 ", "  ", "PROTON_LOG=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.cmd, tt.target))
		})
	}
}

func TestEnvAssignments(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want []string
	}{
		{"single", "SteamDeck=0 %command%", []string{"SteamDeck=0"}},
		{"several", "A=1 B_2=two %command% C=3", []string{"A=1", "B_2=two"}},
		{"wrapper first", "gamemoderun A=1 %command%", nil},
		{"invalid name", "1A=2 %command%", nil},
		{"empty value", "EMPTY= %command%", []string{"EMPTY="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnvAssignments(tt.cmd))
		})
	}
}

func collect(ch <-chan OutputMsg) []OutputMsg {
	var msgs []OutputMsg
	for m := range ch {
		msgs = append(msgs, m)
	}
	return msgs
}

func TestRun(t *testing.T) {
	ch := make(chan OutputMsg)
	go Run(context.Background(), Expand("GREETING=hi %command%", `sh -c 'echo "$GREETING"; echo oops >&2'`), ch)

	msgs := collect(ch)
	require.NotEmpty(t, msgs)

	last := msgs[len(msgs)-1]
	assert.True(t, last.Done)
	assert.Empty(t, last.ErrMsg)
	assert.Contains(t, msgs[:len(msgs)-1], OutputMsg{Line: "hi"})
	assert.Contains(t, msgs[:len(msgs)-1], OutputMsg{Line: "oops", IsErr: true})
}

func TestRun_Failure(t *testing.T) {
	ch := make(chan OutputMsg)
	go Run(context.Background(), "exit 3", ch)

	msgs := collect(ch)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Done)
	assert.Contains(t, msgs[0].ErrMsg, "exit status 3")
}

func TestRun_CancelWithoutReceiver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan OutputMsg)
	returned := make(chan struct{})
	go func() {
		Run(ctx, "yes", ch)
		close(returned)
	}()

	first := <-ch
	assert.Equal(t, "y", first.Line)

	// Nobody reads from ch any more.
	cancel()

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("Run stayed blocked on an unread channel after cancel")
	}
}

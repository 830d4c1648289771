package puzzle

import (
	"sync"
	"testing"

	"github.com/jwebster45206/d20"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCode(t *testing.T) {
	tests := []struct {
		answer string
		want   Outcome
	}{
		{"9527", Correct},
		{"9528", Incorrect},
		{" 9527", Incorrect},
		{"9527 ", Incorrect},
		{"", Incorrect},
		{"95270", Incorrect},
		{"nine", Incorrect},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCode(tt.answer, "9527"))
		})
	}
}

func TestCheckKeyword(t *testing.T) {
	tests := []struct {
		answer string
		want   Outcome
	}{
		{"fubell", Correct},
		{"FUBELL", Correct},
		{"FuBell", Correct},
		{"fu bell", Incorrect},
		{"fubel", Incorrect},
		{"", Incorrect},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckKeyword(tt.answer, "FUBELL"))
		})
	}
}

func TestCheckChoice(t *testing.T) {
	assert.Equal(t, Correct, CheckChoice("A", "A"))
	assert.Equal(t, Incorrect, CheckChoice("B", "A"))
	assert.Equal(t, Incorrect, CheckChoice("a", "A"))
	assert.Equal(t, Incorrect, CheckChoice("", ""))
}

func TestHintUnlocked(t *testing.T) {
	assert.False(t, HintUnlocked(0))
	assert.False(t, HintUnlocked(2))
	assert.True(t, HintUnlocked(3))
	assert.True(t, HintUnlocked(10))
}

func TestDecodeBinary(t *testing.T) {
	code, err := DecodeBinary([]string{"1001", "101", "10", "111"})
	require.NoError(t, err)
	assert.Equal(t, "9527", code)

	_, err = DecodeBinary([]string{"1001", "12"})
	assert.Error(t, err)

	code, err = DecodeBinary(nil)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestCaesarDecode(t *testing.T) {
	tests := []struct {
		cipher string
		key    int
		want   string
	}{
		{"IXEHOO", 3, "FUBELL"},
		{"ixehoo", 3, "fubell"},
		{"ABC", 3, "XYZ"},
		{"FUBELL", 0, "FUBELL"},
		{"FUBELL", 26, "FUBELL"},
		{"d=3!", 3, "a=3!"},
	}

	for _, tt := range tests {
		t.Run(tt.cipher, func(t *testing.T) {
			assert.Equal(t, tt.want, CaesarDecode(tt.cipher, tt.key))
		})
	}
}

func TestContest(t *testing.T) {
	tests := []struct {
		name     string
		player   int
		opponent int
		verdict  Verdict
		outcome  Outcome
	}{
		{"player higher", 6, 3, Win, Correct},
		{"tie", 3, 3, Draw, Tie},
		{"player lower", 2, 5, Loss, Incorrect},
		{"one above", 2, 1, Win, Correct},
		{"max tie", 6, 6, Draw, Tie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Contest(tt.player, tt.opponent)
			assert.Equal(t, tt.verdict, res.Verdict)
			assert.Equal(t, tt.outcome, res.Outcome())
			assert.Equal(t, tt.verdict == Win, res.Won())
			assert.Equal(t, tt.player, res.Player)
			assert.Equal(t, tt.opponent, res.Opponent)
		})
	}
}

func TestContest_ClampsRolls(t *testing.T) {
	res := Contest(9, 0)
	assert.Equal(t, 6, res.Player)
	assert.Equal(t, 1, res.Opponent)
	assert.Equal(t, Win, res.Verdict)
}

func TestRandRoller_Range(t *testing.T) {
	r := NewRoller(42)
	seen := make(map[int]bool)
	for range 1000 {
		v := r.Roll()
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, DieSides)
		seen[v] = true
	}
	assert.Len(t, seen, DieSides, "every face should appear in 1000 rolls")
}

func TestRandRoller_Deterministic(t *testing.T) {
	a, b := NewRoller(7), NewRoller(7)
	for range 20 {
		assert.Equal(t, a.Roll(), b.Roll())
	}
}

func TestRandRoller_FollowsD20Sequence(t *testing.T) {
	want := d20.NewRoller(42)
	r := NewRoller(42)
	for range 50 {
		out, err := want.Dice(1, DieSides).Roll()
		require.NoError(t, err)
		assert.Equal(t, out.Value, r.Roll())
	}
}

func TestRandRoller_SeededContestIsReproducible(t *testing.T) {
	a := RollContest(NewRoller(42))
	b := RollContest(NewRoller(42))
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.Verdict)
}

func TestRandRoller_ConcurrentRolls(t *testing.T) {
	r := NewRandomRoller()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				v := r.Roll()
				assert.GreaterOrEqual(t, v, 1)
				assert.LessOrEqual(t, v, DieSides)
			}
		}()
	}
	wg.Wait()
}

func TestRollContest(t *testing.T) {
	res := RollContest(NewFixedRoller(6, 3))
	assert.Equal(t, Win, res.Verdict)

	res = RollContest(NewFixedRoller(4))
	assert.Equal(t, Draw, res.Verdict)

	res = RollContest(NewFixedRoller())
	assert.Equal(t, ContestResult{Player: 1, Opponent: 1, Verdict: Draw}, res)
}

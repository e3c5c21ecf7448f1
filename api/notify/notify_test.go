/* notify_test.go
 * Contains unit tests for notify.go
 */

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPush_VisibleUntilTTL(t *testing.T) {
	n := New(30 * time.Millisecond)

	n.Error("No se pudo guardar la zona")

	notice, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, LevelError, notice.Level)
	assert.Equal(t, "No se pudo guardar la zona", notice.Message)

	assert.Eventually(t, func() bool {
		_, visible := n.Current()
		return !visible
	}, time.Second, 5*time.Millisecond)
}

func TestPush_NewerNoticeRestartsTimer(t *testing.T) {
	n := New(50 * time.Millisecond)

	n.Info("primero")
	time.Sleep(30 * time.Millisecond)
	n.Success("segundo")
	time.Sleep(30 * time.Millisecond)

	notice, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "segundo", notice.Message)
	n.Dismiss()
}

func TestDismiss(t *testing.T) {
	n := New(time.Minute)
	n.Success("Guardado")

	n.Dismiss()

	_, ok := n.Current()
	assert.False(t, ok)
}

func TestNew_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, New(0).ttl)
}

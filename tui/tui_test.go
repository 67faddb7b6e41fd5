package tui

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/handover"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/queue"
	"github.com/dashreel/dashreel/session"
	"github.com/dashreel/dashreel/strategy"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBubble(t *testing.T) {
	Convey("Given a status view over a queue", t, func() {
		items := []*media.Item{media.New("/media/coast.mp4"), media.New("/media/map.png")}
		b := newBubble(&Options{Queue: queue.New(items, queue.Sequential)})
		b.resize(80, 24)

		Convey("It waits for the first item", func() {
			So(b.View(), ShouldContainSubstring, "starting")
		})

		Convey("A snapshot shows item, backend and handover", func() {
			b.Update(snapshotMsg(session.Snapshot{
				Item:       items[0],
				Backend:    strategy.RobustBackend,
				State:      attempt.Ready,
				HandedOver: true,
				Position:   30 * time.Second,
				Duration:   2 * time.Minute,
			}))

			view := b.View()
			So(view, ShouldContainSubstring, "coast.mp4")
			So(view, ShouldContainSubstring, strategy.RobustBackend)
			So(view, ShouldContainSubstring, "handed over")
			So(view, ShouldContainSubstring, "0:30 / 2:00")

			Convey("And the queue marks the current item", func() {
				So(b.queueC.Items()[0].(*listItem).current, ShouldBeTrue)
				So(b.queueC.Items()[1].(*listItem).current, ShouldBeFalse)
			})
		})

		Convey("Notices are kept up to a limit", func() {
			for i := 0; i < keptNotices+2; i++ {
				b.Update(noticeMsg(session.Notice{Kind: handover.Advance, Item: items[0], Reason: "end of item"}))
			}
			So(b.notices, ShouldHaveLength, keptNotices)
		})

		Convey("The queue view opens and closes", func() {
			b.Update(runes("u"))
			So(b.state, ShouldEqual, queueState)
			So(b.View(), ShouldContainSubstring, "map.png")

			b.Update(tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, playingState)
		})

		Convey("q quits", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})

		Convey("The end of the session can close the view", func() {
			b.options.QuitOnDone = true
			_, cmd := b.Update(sessionDoneMsg{})
			So(b.finished, ShouldBeTrue)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})
}

func TestClock(t *testing.T) {
	Convey("clock", t, func() {
		So(clock(65*time.Second), ShouldEqual, "1:05")
		So(clock(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1:02:03")
	})
}

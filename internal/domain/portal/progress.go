// internal/domain/portal/progress.go
package portal

import "math"

// Message は進捗バーに添えるメッセージ区分です。
type Message string

const (
	MsgGettingStarted Message = "Let's get started!"

	// 6ステップ（契約ポータル）の区分
	MsgRolling    Message = "Rolling now!"
	MsgCrushing   Message = "Crushing it!"
	MsgHalfway    Message = "Halfway done!"
	MsgSoClose    Message = "So close!"
	MsgLaunchReady Message = "Launch ready!"

	// 5ステップ（月額ポータル）の区分
	MsgGreatBeginning Message = "Great beginning!"
	MsgMakingProgress Message = "Making progress"
	MsgOverHalfway    Message = "Over halfway!"
	MsgAlmostThere    Message = "Almost there!"
	MsgAllComplete    Message = "All complete!"
)

// Progress は状態から導かれる純粋な射影です。副作用を持ちません。
type Progress struct {
	Completed  int
	Total      int
	Percentage int
	Message    Message
}

type band struct {
	min int
	msg Message
}

// メッセージ閾値はパーセンテージの固定段階関数。
// 5ステップと6ステップで境界が異なるため、合計ステップ数ごとに持つ。
var bandsByTotal = map[int][]band{
	5: {
		{0, MsgGettingStarted},
		{20, MsgGreatBeginning},
		{40, MsgMakingProgress},
		{60, MsgOverHalfway},
		{80, MsgAlmostThere},
		{100, MsgAllComplete},
	},
	6: {
		{0, MsgGettingStarted},
		{17, MsgRolling},
		{34, MsgCrushing},
		{50, MsgHalfway},
		{67, MsgSoClose},
		{100, MsgLaunchReady},
	},
}

// Project maps step state to {completed, total, percentage, message}.
// percentage = round(100 * completed / total).
func Project(c *ClientRecord) Progress {
	total := c.StepCount()
	completed := c.CompletedCount()

	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(completed) / float64(total)))
	}

	msg := MsgGettingStarted
	bands, ok := bandsByTotal[total]
	if !ok {
		bands = bandsByTotal[6]
	}
	for _, b := range bands {
		if pct >= b.min {
			msg = b.msg
		}
	}

	return Progress{
		Completed:  completed,
		Total:      total,
		Percentage: pct,
		Message:    msg,
	}
}

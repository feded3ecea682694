/*
Package status tracks batch progress and formats it for people.

	            +-------------+
	            |   Tracker   |
	            |  (percent)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|  Summary  |           | Formatter |
	| (volumes) |           |  (UI/UX)  |
	+-----------+           +-----------+

🎯 Purpose:
- Turns per-volume page progress into one overall batch percentage
- Records the outcome of every volume in a batch
- Renders progress, page and volume lines for the console

🔄 Flow:
1. The runner tells the Tracker which volume (i of n) is active
2. Page progress p (0-100) becomes ((i-1)/n)*100 + p/n
3. Each finished volume is recorded in the Summary as done or failed
4. The Formatter renders lines with emoji, logging.go adds colour

⚡ Key Responsibilities:
- Progress math that never goes backwards within a volume
- Thread-safe bookkeeping (the pipeline runs on its own goroutine)
- Presentation only; nothing here touches the file system

🔍 Example:

	tracker := status.NewTracker(len(inputs))
	tracker.StartVolume(1)
	pct := tracker.Update(50) // 50% of the first of two volumes -> 25

	summary := status.NewSummary()
	summary.Record(status.VolumeInfo{Input: "vol1.cbz", Status: status.StatusDone})
	fmt.Println(status.NewDefaultFormatter().FormatSummary(summary))
*/
package status

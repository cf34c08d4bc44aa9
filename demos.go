package main

// Demo is an entry of the home page catalog.
type Demo struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Desc string `json:"desc"`
	Info string `json:"info"` // footer text shown on the demo page
}

var demos = []Demo{
	{
		Slug: "clock-of-clocks",
		Name: "Clock of Clocks",
		URL:  "/clock-of-clocks",
		Desc: "An animated clock that visualizes time using hands of multiple mini clocks.",
		Info: "Digital clock that visualizes time using multiple mini analog clocks.",
	},
	{
		Slug: "stopwatch",
		Name: "Stopwatch",
		URL:  "/timers/new?kind=stopwatch",
		Desc: "A stopwatch whose digits are drawn by the same mini clocks.",
		Info: "Stopwatch with animated scrolling digits and colorful interactive effects.",
	},
	{
		Slug: "pomodoro",
		Name: "Pomodoro Timer",
		URL:  "/timers/new?kind=pomodoro",
		Desc: "Focus, short break and long break countdowns with a time's up alarm.",
		Info: "Pomodoro Timer with looping alarm and 'Time’s Up' dialog.",
	},
}

// findDemo returns the catalog entry for slug.
func findDemo(slug string) (Demo, bool) {
	for _, d := range demos {
		if d.Slug == slug {
			return d, true
		}
	}
	return Demo{}, false
}

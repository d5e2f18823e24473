package telegram

// UI texts in English
const (
	greetingFmt = "Hi, %s! I am your morning motivator.\n" +
		"Every day at %s I will ask how you feel, then send you a push to go running.\n" +
		"When you have run, send /ran"
	ranText  = "🔥 Great! Keep it up!"
	hintText = "No question is waiting for an answer right now.\n" +
		"I will ask about your mood at the next morning prompt. Send /ran after a run."
	stoppedText    = "⏸ Morning prompts are off. Send /start to turn them back on."
	notStartedText = "You are not subscribed yet. Send /start to get morning prompts."
	errorText      = "Something went wrong. Please try again later."

	helpText = "Commands:\n" +
		"/start - subscribe to the morning prompt\n" +
		"/ran - log today's run\n" +
		"/status - next prompt, runs and streak\n" +
		"/stop - stop the morning prompts\n" +
		"/help - this list\n\n" +
		"When I ask how you feel, just reply with a word: great, okay or bad."

	statusTitle    = "🧾 Your status:"
	statusTitleFmt = "🧾 %s, your status:"
	statusFmt      = "• Next prompt: %s\n• Waiting for your answer: %s\n• Runs logged: %d\n• Current streak: %d day(s)\n• Last morning: %s\n"
)

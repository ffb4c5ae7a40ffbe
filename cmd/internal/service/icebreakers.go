package service

var iceBreakers = []string{
	"What is the best thing that happened to you this week?",
	"If you could learn any skill overnight, what would it be?",
	"What was your first job, and what did it teach you?",
	"Which place in the neighbourhood do you always recommend?",
	"What are you most looking forward to this month?",
	"What small habit has made the biggest difference for you?",
	"Which book, show or podcast would you recommend to everyone here?",
	"If you had a free afternoon today, how would you spend it?",
	"What project are you working on right now that excites you?",
	"What is the most memorable meal you have ever had?",
	"Where would you go on a trip if you could leave tomorrow?",
	"What did you want to be when you were a child?",
	"What is one thing people are usually surprised to learn about you?",
	"Which hobby would you pick up if time were not an issue?",
	"What is a piece of advice you keep coming back to?",
}

package main

// Theme names a category of prompt templates. ThemeRandom is not stored;
// it is derived as the concatenation of every themed list.
type Theme string

const (
	ThemeClassic Theme = "classic"
	ThemeCringe  Theme = "cringe"
	ThemeFantasy Theme = "fantasy"
	ThemeRandom  Theme = "random"
)

var themeOrder = []Theme{ThemeClassic, ThemeCringe, ThemeFantasy}

var promptBank = map[Theme][]string{
	ThemeClassic: {
		"In ten years, you will wake up every morning to the sound of...",
		"Your greatest fortune will arrive disguised as...",
		"A stranger on a train will one day hand you...",
		"The stars say your true calling is...",
		"Before the decade ends, you will be famous for...",
		"Your future home will be located...",
		"One day you will refuse to leave the house without...",
		"Your retirement will be funded entirely by...",
		"History books will remember you as the person who...",
		"Your lucky charm will turn out to be...",
		"On your next birthday, fate will deliver...",
		"The love of your life will first appear carrying...",
	},
	ThemeCringe: {
		"At your next family gathering, you will loudly announce...",
		"Your most-watched video online will show you...",
		"You will be banned from your favorite restaurant for...",
		"Your ringtone at the worst possible moment will be...",
		"In front of your entire office, you will accidentally...",
		"Your autobiography's most embarrassing chapter is titled...",
		"You will become locally famous after tripping over...",
		"At a wedding, you will be caught on camera...",
		"Your search history will one day reveal...",
		"You will wear the wrong outfit to...",
		"Your karaoke song of choice will forever be...",
		"The group chat will never let you forget the time you...",
	},
	ThemeFantasy: {
		"The dragon guarding your treasure demands...",
		"Your sword of legend was forged from...",
		"The prophecy carved above your castle gate reads...",
		"Your loyal familiar is a talking...",
		"To cross the cursed bridge, you must offer...",
		"The wizard's apprentice mistakes you for...",
		"Your kingdom's most sacred festival celebrates...",
		"Deep in the enchanted forest, you will discover...",
		"The potion you brew by accident will cause...",
		"Your quest will be interrupted by a goblin selling...",
		"The oracle whispers that your destiny smells like...",
		"Your magic mirror refuses to show you anything except...",
	},
}

// promptsFor returns a fresh copy of the prompt list for a theme, so callers
// can shuffle or truncate without touching the bank. ThemeRandom yields the
// union of all themes in declaration order. Unknown themes yield an empty
// list, which downstream code degrades on rather than rejecting.
func promptsFor(theme Theme) []string {
	if theme == ThemeRandom {
		var all []string
		for _, t := range themeOrder {
			all = append(all, promptBank[t]...)
		}
		return all
	}

	src := promptBank[theme]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

package script

import (
	"fmt"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// Fallback identity used when no profile is supplied.
const (
	defaultAuthor  = "votre hôte"
	defaultChannel = "la chaîne"
	defaultTopic   = "ce sujet"
)

// Brief is what a script is written about.
type Brief struct {
	Topic     string
	Angle     string
	KeyPoints []string
	Profile   *types.CreatorProfile
}

// BriefFromTopic builds a brief from a generated topic.
func BriefFromTopic(t types.Topic, profile *types.CreatorProfile) Brief {
	return Brief{Topic: t.Title, Angle: t.Angle, KeyPoints: t.KeyPoints, Profile: profile}
}

func (b Brief) topic() string {
	if t := strings.TrimSpace(b.Topic); t != "" {
		return t
	}
	return defaultTopic
}

func (b Brief) author() string  { return b.Profile.Author(defaultAuthor) }
func (b Brief) channel() string { return b.Profile.Channel(defaultChannel) }

func hookLine(b Brief) string {
	return fmt.Sprintf("Et si tout ce que vous pensiez savoir sur %s était incomplet ? Restez jusqu'au bout : ce qui suit pourrait bien changer votre regard.", b.topic())
}

func introLine(b Brief) string {
	return fmt.Sprintf("Bonjour à toutes et à tous, et bienvenue sur %s ! Ici %s. Aujourd'hui, on s'attaque à un sujet passionnant : %s.", b.channel(), b.author(), b.topic())
}

func conclusionLine(b Brief) string {
	return fmt.Sprintf("Voilà pour ce tour d'horizon de %s. Si cette vidéo vous a plu, abonnez-vous à %s et dites-moi en commentaire ce que vous en pensez. À très vite, %s.", b.topic(), b.channel(), b.author())
}

// Scaffold returns the deterministic fallback script: hook, introduction,
// three sections and a conclusion, naming the topic, author and channel.
func Scaffold(b Brief) string {
	points := b.KeyPoints
	if len(points) < 3 {
		points = []string{"Le contexte", "Les enjeux", "Les perspectives"}
	}
	topic := b.topic()

	sections := []types.Section{
		{Heading: HeadingHook, Body: hookLine(b)},
		{Heading: HeadingIntroduction, Body: introLine(b) + " On va voir d'où vient ce sujet, pourquoi il compte aujourd'hui et ce qu'il pourrait changer demain."},
		{Heading: "SECTION 1", Body: fmt.Sprintf("%s. Pour bien comprendre %s, il faut d'abord revenir sur son origine et sur les idées reçues qui l'entourent. Posons les bases ensemble, simplement.", points[0], topic)},
		{Heading: "SECTION 2", Body: fmt.Sprintf("%s. Entrons maintenant dans le vif du sujet. Qui est concerné par %s, qu'est-ce qui est réellement en jeu, et pourquoi le débat est-il loin d'être clos ?", points[1], topic)},
		{Heading: "SECTION 3", Body: fmt.Sprintf("%s. Regardons enfin vers l'avenir. Quelles évolutions attendre autour de %s, et que pouvez-vous en retenir concrètement dès aujourd'hui ?", points[2], topic)},
		{Heading: HeadingConclusion, Body: conclusionLine(b)},
	}
	return RenderSections(sections)
}

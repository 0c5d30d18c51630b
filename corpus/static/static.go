// Package static embeds a small sample corpus of patristic texts, public
// domain translations from the Ante-Nicene and Nicene series. It seeds
// demos and exercises every search method without network access.
package static

import (
	"context"

	"github.com/pauldavidfisher/church-fathers-search/corpus"
)

var documents = []corpus.Document{
	{
		Author:        "Clement of Rome",
		AuthorIsSaint: true,
		WorkTitle:     "First Epistle to the Corinthians",
		WorkURL:       "https://www.newadvent.org/fathers/1010.htm",
		ChapterNumber: 49,
		ChapterTitle:  "The praise of love",
		Content: "Let him who has love in Christ keep the commandments of Christ. " +
			"Who can describe the blessed bond of the love of God? What man is able " +
			"to tell the excellence of its beauty, as it ought to be told? The height " +
			"to which love exalts is unspeakable. Love unites us to God. Love covers " +
			"a multitude of sins. Love bears all things, is long-suffering in all " +
			"things. There is nothing base, nothing arrogant in love. Love admits of " +
			"no schisms: love gives rise to no seditions: love does all things in " +
			"harmony. By love have all the elect of God been made perfect; without " +
			"love nothing is well-pleasing to God.",
	},
	{
		Author:        "Clement of Rome",
		AuthorIsSaint: true,
		WorkTitle:     "First Epistle to the Corinthians",
		WorkURL:       "https://www.newadvent.org/fathers/1010.htm",
		ChapterNumber: 50,
		ChapterTitle:  "Let us pray to be thought worthy of love",
		Content: "You see, beloved, how great and wonderful a thing is love, and that " +
			"there is no declaring its perfection. Who is fit to be found in it, " +
			"except such as God has granted to render so? Let us pray, therefore, and " +
			"implore of His mercy, that we may live blameless in love, free from all " +
			"human partialities for one above another. All the generations from Adam " +
			"even unto this day have passed away; but those who, through the grace of " +
			"God, have been perfected in love, now possess a place among the godly, " +
			"and shall be made manifest at the revelation of the kingdom of Christ.",
	},
	{
		Author:         "Augustine of Hippo",
		AuthorIsSaint:  true,
		AuthorIsDoctor: true,
		WorkTitle:      "Confessions",
		WorkURL:        "https://www.newadvent.org/fathers/110101.htm",
		ChapterNumber:  1,
		ChapterTitle:   "Book I, Chapter 1",
		Content: "Great are You, O Lord, and greatly to be praised; great is Your " +
			"power, and Your wisdom infinite. And You would man praise; man, but a " +
			"particle of Your creation; man, that bears about him his mortality, the " +
			"witness of his sin, the witness that You resist the proud: yet would man " +
			"praise You; he, but a particle of Your creation. You awaken us to " +
			"delight in Your praise; for You made us for Yourself, and our heart is " +
			"restless until it finds rest in You.",
	},
	{
		Author:         "Augustine of Hippo",
		AuthorIsSaint:  true,
		AuthorIsDoctor: true,
		WorkTitle:      "Confessions",
		WorkURL:        "https://www.newadvent.org/fathers/110101.htm",
		ChapterNumber:  2,
		ChapterTitle:   "Book I, Chapter 2",
		Content: "And how shall I call upon my God, my God and Lord, since, when I " +
			"call for Him, I shall be calling Him to myself? And what room is there " +
			"within me, whither my God can come into me? Whither can God come into " +
			"me, God who made heaven and earth? Is there, indeed, O Lord my God, " +
			"anything in me that can contain You? Do indeed heaven and earth, which " +
			"You have made, and wherein You have made me, contain You?",
	},
	{
		Author:         "Athanasius of Alexandria",
		AuthorIsSaint:  true,
		AuthorIsDoctor: true,
		WorkTitle:      "On the Incarnation of the Word",
		WorkURL:        "https://www.newadvent.org/fathers/2802.htm",
		ChapterNumber:  8,
		ChapterTitle:   "The Word takes a body",
		Content: "For this purpose, then, the incorporeal and incorruptible and " +
			"immaterial Word of God comes to our realm, howbeit he was not far from " +
			"us before. For no part of creation is left void of him: he has filled " +
			"all things everywhere, remaining present with his own Father. But he " +
			"comes in condescension to show loving-kindness upon us, and to visit " +
			"us. And seeing the race of rational creatures in the way to perish, and " +
			"death reigning over them by corruption, he takes unto himself a body, " +
			"and that of no different sort from ours.",
	},
	{
		Author:         "Athanasius of Alexandria",
		AuthorIsSaint:  true,
		AuthorIsDoctor: true,
		WorkTitle:      "On the Incarnation of the Word",
		WorkURL:        "https://www.newadvent.org/fathers/2802.htm",
		ChapterNumber:  54,
		ChapterTitle:   "The Word was made man",
		Content: "For he was made man that we might be made God; and he manifested " +
			"himself by a body that we might receive the idea of the unseen Father; " +
			"and he endured the insolence of men that we might inherit immortality. " +
			"For while he himself was in no way injured, being impassible and " +
			"incorruptible and very Word of God, men who were suffering, and for " +
			"whose sakes he endured all this, he maintained and preserved in his own " +
			"impassibility.",
	},
}

// Documents returns a fresh copy of the sample corpus.
func Documents() []corpus.Document {
	docs := make([]corpus.Document, len(documents))
	copy(docs, documents)
	return docs
}

// Source streams the sample corpus.
type Source struct{}

var _ corpus.Source = (*Source)(nil)

// NewSource returns a source over the sample corpus.
func NewSource() *Source {
	return &Source{}
}

// ForEach delivers every sample document to fn in corpus order.
func (s *Source) ForEach(ctx context.Context, fn func(doc *corpus.Document, err error) error) error {
	for i := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := documents[i]
		if err := fn(&doc, nil); err != nil {
			return err
		}
	}
	return nil
}

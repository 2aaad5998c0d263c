package tasks

import "github.com/mmrzaf/forumsetup/internal/domain"

// DefaultBots are the crawlers a fresh board recognises, in insertion order.
var DefaultBots = []domain.Bot{
	{Name: "AdsBot [Google]", Agent: "AdsBot-Google"},
	{Name: "Alexa [Bot]", Agent: "ia_archiver"},
	{Name: "Alta Vista [Bot]", Agent: "Scooter/"},
	{Name: "Ask Jeeves [Bot]", Agent: "Ask Jeeves"},
	{Name: "Baidu [Spider]", Agent: "Baiduspider"},
	{Name: "Bing [Bot]", Agent: "bingbot/"},
	{Name: "DuckDuckGo [Bot]", Agent: "DuckDuckBot/"},
	{Name: "Exabot [Bot]", Agent: "Exabot"},
	{Name: "FAST Enterprise [Crawler]", Agent: "FAST Enterprise Crawler"},
	{Name: "FAST WebCrawler [Crawler]", Agent: "FAST-WebCrawler/"},
	{Name: "Francis [Bot]", Agent: "http://www.neomo.de/"},
	{Name: "Gigabot [Bot]", Agent: "Gigabot/"},
	{Name: "Google Adsense [Bot]", Agent: "Mediapartners-Google"},
	{Name: "Google Desktop", Agent: "Google Desktop"},
	{Name: "Google Feedfetcher", Agent: "Feedfetcher-Google"},
	{Name: "Google [Bot]", Agent: "Googlebot"},
	{Name: "Heise IT-Markt [Crawler]", Agent: "heise-IT-Markt-Crawler"},
	{Name: "Heritrix [Crawler]", Agent: "heritrix/1."},
	{Name: "IBM Research [Bot]", Agent: "ibm.com/cs/crawler"},
	{Name: "ICCrawler - ICjobs", Agent: "ICCrawler - ICjobs"},
	{Name: "ichiro [Crawler]", Agent: "ichiro/"},
	{Name: "Majestic-12 [Bot]", Agent: "MJ12bot/"},
	{Name: "Metager [Bot]", Agent: "MetagerBot/"},
	{Name: "MSN NewsBlogs", Agent: "msnbot-NewsBlogs/"},
	{Name: "MSN [Bot]", Agent: "msnbot/"},
	{Name: "MSNbot Media", Agent: "msnbot-media/"},
	{Name: "Nutch [Bot]", Agent: "http://lucene.apache.org/nutch/"},
	{Name: "Online link [Validator]", Agent: "online link validator"},
	{Name: "psbot [Picsearch]", Agent: "psbot/0"},
	{Name: "Sensis [Crawler]", Agent: "Sensis Web Crawler"},
	{Name: "SEO Crawler", Agent: "SEO search Crawler/"},
	{Name: "Seoma [Crawler]", Agent: "Seoma [SEO Crawler]"},
	{Name: "SEOSearch [Crawler]", Agent: "SEOsearch/"},
	{Name: "Snappy [Bot]", Agent: "Snappy/1.1 ( http://www.urltrends.com/ )"},
	{Name: "Steeler [Crawler]", Agent: "http://www.tkl.iis.u-tokyo.ac.jp/~crawler/"},
	{Name: "Telekom [Bot]", Agent: "crawleradmin.t-info@telekom.de"},
	{Name: "TurnitinBot [Bot]", Agent: "TurnitinBot/"},
	{Name: "Voyager [Bot]", Agent: "voyager/"},
	{Name: "W3 [Sitesearch]", Agent: "W3 SiteSearch Crawler"},
	{Name: "W3C [Linkcheck]", Agent: "W3C-checklink/"},
	{Name: "W3C [Validator]", Agent: "W3C_Validator"},
	{Name: "YaCy [Bot]", Agent: "yacybot"},
	{Name: "Yahoo MMCrawler [Bot]", Agent: "Yahoo-MMCrawler/"},
	{Name: "Yahoo Slurp [Bot]", Agent: "Yahoo! DE Slurp"},
	{Name: "Yahoo [Bot]", Agent: "Yahoo! Slurp"},
	{Name: "YahooSeeker [Bot]", Agent: "YahooSeeker/"},
}

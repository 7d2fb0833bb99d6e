package rules

// DefaultRules is the rules document written on first start.
const DefaultRules = `utm_source
utm_source*
utm_medium
utm_campaign
utm_term
utm_content
origin
ref
?crid // Amazon
gclid // Google Ads
fbclid // Facebook
dclid // DoubleClick
msclkid // Microsoft/Bing
twclid // Twitter/X
yclid // Yandex
?spm // Alibaba/Taobao
?dib
&highlightedUpdateType // LinkedIn`

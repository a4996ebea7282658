package classifier

// 名单需要精确匹配（去首尾空白后）

var knownOthers = []string{
	"(鋼琴師)插曲", "一口甜", "一切有我", "一支榴槤", "一縷輕煙", "又見炊煙",
	"三年的舊情", "三聲無奈", "不甘拆分開", "你的上好佳", "你愛不愛我", "到底愛我不愛",
	"我比誰都愛你", "我在妳左右", "再會呀港都", "夜來香", "望春風",
	"民歌", "民歌往事", "民歌專輯", "外場老歌", "陝北民歌", "蒙古族民歌", "Traditional Folk Song",
	"張三李四鄧福如", "zp xo4", "天涯芳草", "慈母淚痕", "桑塔露琪亞",
	// 合唱曲目名与词曲作者
	"15所高中大合唱", "2013全職高中大合唱", "2017高中大合唱", "2022全國高中生大合唱",
	"全國高中生大合唱", "高中生大合唱", "滾石大合唱", "大合唱", "大對唱", "合唱", "情歌對唱",
	"Adams & Lange", "Ashford & V. Simpson", "B.Adams & J.Valiance",
	"Carol Bayer Sager & Albert Hammond", "Dickson/Goffin/Foster/Crosby",
	"Frank J. Myers & Gary Baker", "Frank Wildhorn&John Bettis", "Gerry Goffin & Michael Masser",
	"John MacLeod & Tony Macaulay", "Linda Creed&Michael Masser", "Mann & Weil & Snow",
	"Pomeranz&David Zippel", "Stock&Aitken", "Williams&G.M.", "Zager & Evan",
}

var knownChorus = []string{
	"李宗盛鄭怡", "周杰倫袁詠琳", "沈芳如沈建豪", "張學友高慧君", "成龍蘇慧倫",
	"王力宏盧巧音", "王力宏Selina", "陶喆蔡依林", "吳宗憲溫嵐", "劉德華陳慧琳",
}

var knownMales = []string{
	"周杰倫", "陳奕迅", "林俊傑", "王力宏", "陶喆", "李榮浩", "薛之謙", "伍佰", "張學友", "劉德華",
	"蕭敬騰", "林宥嘉", "周興哲", "盧廣仲", "張宇", "陳零九", "邱鋒澤", "韋禮安", "瘦子", "高爾宣",
	"ØZI", "張信哲", "費玉清", "任賢齊", "光良", "品冠", "羅志祥", "潘瑋柏", "吳青峰",
	"張震嶽", "李聖傑", "林志炫", "許嵩", "胡夏", "毛不易", "周華健", "庾澄慶", "黃品源", "趙傳",
	"伍思凱", "張雨生", "王傑", "童安格", "齊秦", "蘇永康", "杜德偉", "李克勤", "古巨基", "謝和弦",
	"炎亞綸", "畢書盡", "鼓鼓", "方大同", "Tank", "范逸臣", "楊宗緯", "蕭煌奇", "荒山亮",
	"陳勢安", "嚴爵", "蔡旻佑", "黃鴻升", "柯有倫", "陳小春", "鄭中基", "黎明", "郭富城", "鍾漢良",
	"熊天平", "巫啟賢", "陳昇", "吳宗憲", "黃立行", "MC HotDog", "Matzka", "J.Sheon", "熱狗", "蛋堡",
	"山内惠介", "陳雅森", "乱彈阿翔",
	// 台语
	"翁立友", "蔡小虎", "羅時豐", "施文彬", "袁小迪", "陳雷", "葉啟田", "沈文程", "洪榮宏", "王識賢",
	"許富凱", "陳隨意", "莊振凱", "江志豐", "蔡義德", "陳百潭", "楊哲", "邵大倫",
	"吳俊宏", "林俊吉", "傅振輝", "高向鵬", "七郎", "阿吉仔", "余天", "謝雷", "李茂山", "黃西田",
	"鄭進一", "陳一郎", "郭金發", "方順吉", "吳欣達", "王中平", "蔡佳麟",
	// 西洋
	"Ed Sheeran", "Justin Bieber", "Bruno Mars", "Michael Jackson", "Eminem", "Charlie Puth",
	"Shawn Mendes", "Sam Smith", "Post Malone", "Drake", "The Weeknd", "Troye Sivan", "Lauv",
	"Jason Mraz", "John Mayer", "Elvis Presley", "Frank Sinatra", "Elton John", "George Michael",
	"Justin Timberlake", "Usher", "Chris Brown", "Ne-Yo", "Harry Styles", "Robbie Williams",
	"Bob Dylan", "David Bowie", "Prince", "Stevie Wonder", "Paul McCartney", "John Lennon",
}

var knownFemales = []string{
	"蔡依林", "張惠妹", "鄧紫棋", "田馥甄", "梁靜茹", "孫燕姿", "王心凌", "楊丞琳", "A-Lin", "張韶涵",
	"蔡健雅", "徐佳瑩", "莫文蔚", "劉若英", "戴愛玲", "陳綺貞", "魏如萱", "家家", "李佳薇", "閻奕格",
	"吳卓源", "陳芳語", "艾怡良", "李玟", "王菲", "林憶蓮", "鄭秀文", "楊乃文", "陳淑樺", "許茹芸",
	"蘇慧倫", "萬芳", "彭佳慧", "順子", "溫嵐", "那英", "張清芳", "范瑋琪", "郭靜", "安心亞", "李千娜",
	"白安", "孫盛希", "9m88", "阿桑", "林凡", "梁文音", "徐若瑄", "丁噹", "卓文萱",
	"郁可唯", "張碧晨", "袁詠琳", "江美琪", "侯湘婷", "許慧欣", "蕭亞軒", "王若琳", "范曉萱",
	"周蕙", "辛曉琪", "趙詠華", "李翊君", "高勝美", "潘越雲", "蔡琴", "甄妮", "鳳飛飛", "鄧麗君",
	"徐懷鈺", "曾沛慈", "宇多田光", "石川さゆり", "坂本冬美", "張靚穎", "楊千嬅", "戴佩妮", "蘇芮",
	"多哇.才吉",
	// 台语
	"白冰冰", "江蕙", "黃乙玲", "張秀卿", "詹雅雯", "龍千玉", "孫淑媚", "秀蘭瑪雅", "黃妃", "王瑞霞",
	"朱海君", "張涵雅", "謝宜君", "向蕙玲", "謝金燕", "蔡秋鳳", "曾心梅", "郭婷筠",
	"陳怡婷", "張文綺", "賴慧如", "唐儷", "楊靜", "林姍", "喬幼", "董育君", "陳淑萍",
	"吳申梅", "甲子慧", "邱芸子", "陳思安", "林良歡", "陳小雲", "陳盈潔", "方瑞娥", "鳳娘",
	// 西洋
	"Adele", "Taylor Swift", "Ariana Grande", "Billie Eilish", "Lady Gaga", "Rihanna", "Katy Perry",
	"Beyoncé", "Sia", "Dua Lipa", "Olivia Rodrigo", "Miley Cyrus", "Celine Dion", "Whitney Houston",
	"Mariah Carey", "Madonna", "Britney Spears", "Avril Lavigne", "Shakira", "Jessie J", "Alicia Keys",
	"Christina Aguilera", "Norah Jones", "Lana Del Rey", "Selena Gomez", "Cher", "Diana Ross",
	"Enya", "Kelly Clarkson", "Kylie Minogue", "Olivia Newton-John", "Pink", "Shania Twain", "Toni Braxton",
}

var knownBands = []string{
	"五月天", "S.H.E", "SHE", "蘇打綠", "魚丁糸", "茄子蛋", "告五人", "動力火車", "玖壹壹", "頑童MJ116",
	"F.I.R", "F.I.R.", "飛兒樂團", "信樂團", "南拳媽媽", "原子邦妮", "草東沒有派對", "美秀集團", "滅火器",
	"理想混蛋", "八三夭", "MP魔幻力量", "5566", "Energy", "草蜢", "小虎隊", "優客李林", "錦繡二重唱",
	"無印良品", "Beyond", "獅子合唱團", "七月半", "宇宙人", "Tizzy Bac", "旺福", "董事長樂團",
	"四分衛", "1976", "麋先生", "Hello Nico", "棉花糖", "Chage & Aska", "KinKi Kids", "AKB48",
	"EXO", "Big Bang", "Super Junior", "少女時代", "Red Velvet", "IVE", "NewJeans", "(G)I-DLE",
	"草屯囝仔", "187INC", "兄弟本色", "浩角翔起", "辦桌二人組", "張三李四", "2個女生", "兩個女生",
	"鳳凰傳奇", "蜜雪薇琪", "閃亮三姊妹", "閃亮三姐妹", "Carpenters", "木匠兄妹", "流浪天涯三兄妹",
	"*Nsync", "183CLUB", "2moro", "98 Degrees", "七朵花", "中國娃娃", "可米小子", "大嘴巴", "東方神起",
	"羽泉", "至上勵合", "玖月奇跡", "南方二重唱", "房東的貓", "深白色2人組", "牛奶咖啡", "筷子兄弟",
	"縱貫線", "黑色餅乾", "Black Eyed Peas", "櫻桃幫", "脫拉庫", "Twins", "東方T&J",
	"十月合唱團", "兒童合唱團", "小海燕合唱團", "蟑螂合唱團",
	// 西洋
	"Maroon 5", "Coldplay", "Blackpink", "BTS", "Twice", "Westlife", "Backstreet Boys",
	"Linkin Park", "Queen", "Bon Jovi", "Guns N' Roses", "Nirvana", "Radiohead",
	"Imagine Dragons", "OneRepublic", "Daft Punk", "AC/DC", "Pink Floyd", "One Direction",
	"Little Mix", "Destiny's Child", "Spice Girls", "Led Zeppelin", "ABBA", "Bee Gees",
	"Simon & Garfunkel", "Wham!", "Roxette", "Savage Garden", "Air Supply", "Ace Of Base",
	"Boyz II Men", "Boyzone", "Eagles", "F4", "Green Day", "Michael Learns To Rock", "MLTR",
	"M2M", "Red Hot Chili Peppers", "Take That", "TFBOYS", "U2",
}

package book

// styleCSS is the shared stylesheet for every chapter.
const styleCSS = `
@page {
    margin: 30px;
}
body {
    font-family: "Bookerly", "Georgia", serif;
    margin: 0 auto;
    line-height: 1.7;
    max-width: 800px;
    padding: 20px;
    color: #2c3338;
}
h1 {
    color: #1a1d1e;
    border-bottom: 2px solid #7ed957;
    font-size: 28px;
    margin: 40px 0 30px;
    padding-bottom: 10px;
    text-align: center;
    font-weight: 700;
    letter-spacing: -0.02em;
}
h2 {
    color: #2c3338;
    margin: 35px 0 20px;
    font-size: 22px;
    font-weight: 600;
    letter-spacing: -0.01em;
}
p {
    margin: 1.2em 0;
}
.recipe-meta {
    background: #f8faf7;
    padding: 20px;
    margin: 25px 0;
    border-radius: 12px;
    border: 1px solid #e8f3e5;
    font-size: 0.95em;
    color: #4a5056;
    text-align: center;
    font-family: "Segoe UI", sans-serif;
}
.ingredients {
    background: #f8faf7;
    padding: 25px 35px;
    margin: 25px 0;
    border-radius: 12px;
    border: 1px solid #e8f3e5;
}
.ingredients ul {
    margin: 0;
    padding: 0;
    list-style-position: inside;
}
.ingredients li {
    margin: 10px 0;
    line-height: 1.5;
}
.instructions {
    margin: 30px 0;
}
.instructions ol {
    margin: 0;
    padding: 0;
    list-style-position: inside;
}
.instruction {
    margin: 20px 0;
    padding: 20px 25px;
    background: #f8faf7;
    border-radius: 12px;
    border: 1px solid #e8f3e5;
    position: relative;
}
img {
    display: block;
    max-width: 100%;
    height: auto;
    border-radius: 12px;
    margin: 25px auto;
}
`
